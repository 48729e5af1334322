package repository

import (
	"github.com/kkkkikiki/crowdfund/internal/metrics"
)

// maxNotices bounds the notices kept per file
const maxNotices = 50

// FileReport describes what loading one table file tolerated. Malformed
// numeric or date fields are defaulted (numbers to zero, dates to unset),
// short rows are padded, lines with unbalanced quotes are split on bare
// commas, and rows without a key are skipped; none of these abort the load.
type FileReport struct {
	Rows      int      `json:"rows"`
	Padded    int      `json:"padded"`
	Resplit   int      `json:"resplit"`
	Defaulted int      `json:"defaulted"`
	Skipped   int      `json:"skipped"`
	Notices   []string `json:"notices,omitempty"`
}

// Clean reports whether the file loaded without any tolerance applied
func (fr FileReport) Clean() bool {
	return fr.Padded == 0 && fr.Resplit == 0 && fr.Defaulted == 0 && fr.Skipped == 0
}

func (fr *FileReport) notice(msg string) {
	if len(fr.Notices) < maxNotices {
		fr.Notices = append(fr.Notices, msg)
	}
}

func (fr FileReport) publish(file string) {
	metrics.RecordMalformedFields(file, fr.Defaulted+fr.Padded+fr.Resplit+fr.Skipped)
}

// LoadReport maps table name to its FileReport
type LoadReport map[string]FileReport

func (lr *LoadReport) set(name string, fr FileReport) {
	if *lr == nil {
		*lr = LoadReport{}
	}
	(*lr)[name] = fr
}

func (lr LoadReport) clone() LoadReport {
	out := make(LoadReport, len(lr))
	for k, v := range lr {
		v.Notices = append([]string(nil), v.Notices...)
		out[k] = v
	}
	return out
}

// Clean reports whether every file loaded without tolerance applied
func (lr LoadReport) Clean() bool {
	for _, fr := range lr {
		if !fr.Clean() {
			return false
		}
	}
	return true
}
