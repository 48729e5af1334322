package repository

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kkkkikiki/crowdfund/internal/database"
	"github.com/kkkkikiki/crowdfund/internal/model"
)

// TimestampLayout is the on-disk layout of pledge creation times (local time, no zone)
const TimestampLayout = "2006-01-02T15:04:05.999999999"

var timestampLayouts = []string{
	"2006-01-02T15:04:05", // accepts any fractional seconds when parsing
	"2006-01-02T15:04",
	time.RFC3339Nano,
}

func encodeCampaign(c model.Campaign) []string {
	return []string{
		c.ID,
		c.Name,
		c.Goal.String(),
		formatDate(c.Deadline),
		c.Category,
		c.RaisedTotal.String(),
	}
}

func encodeRewardTier(t model.RewardTier) []string {
	return []string{
		t.CampaignID,
		t.Name,
		t.MinAmount.String(),
		strconv.Itoa(t.RemainingQuota),
	}
}

func encodePledge(p model.Pledge) []string {
	createdAt := ""
	if !p.CreatedAt.IsZero() {
		createdAt = p.CreatedAt.Format(TimestampLayout)
	}
	return []string{
		p.ID,
		p.UserID,
		p.CampaignID,
		p.Amount.String(),
		p.TierName,
		string(p.Outcome),
		createdAt,
	}
}

func encodeUser(u model.User) []string {
	return []string{u.ID, u.Username, u.DisplayName, u.Credential}
}

// fieldDecoder applies the lossy-parse policy to one row, noting every
// field it had to default
type fieldDecoder struct {
	row database.Row
	fr  *FileReport
}

func (d fieldDecoder) str(i int) string {
	return d.row.Fields[i]
}

func (d fieldDecoder) defaulted(column, value string) {
	d.fr.Defaulted++
	d.fr.notice(fmt.Sprintf("line %d: %s %q is malformed, using default", d.row.Line, column, value))
}

func (d fieldDecoder) decimal(i int, column string) decimal.Decimal {
	s := strings.TrimSpace(d.row.Fields[i])
	v, err := decimal.NewFromString(s)
	if err != nil {
		d.defaulted(column, s)
		return decimal.Zero
	}
	return v
}

func (d fieldDecoder) integer(i int, column string) int {
	s := strings.TrimSpace(d.row.Fields[i])
	v, err := strconv.Atoi(s)
	if err != nil {
		// Some writers emit whole numbers as decimals ("50.0")
		if dv, derr := decimal.NewFromString(s); derr == nil && dv.IsInteger() {
			return int(dv.IntPart())
		}
		d.defaulted(column, s)
		return 0
	}
	return v
}

func (d fieldDecoder) date(i int, column string) time.Time {
	s := strings.TrimSpace(d.row.Fields[i])
	v, err := time.ParseInLocation(model.DateLayout, s, time.Local)
	if err != nil {
		d.defaulted(column, s)
		return time.Time{}
	}
	return v
}

func (d fieldDecoder) timestamp(i int, column string) time.Time {
	s := strings.TrimSpace(d.row.Fields[i])
	for _, layout := range timestampLayouts {
		if v, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return v
		}
	}
	d.defaulted(column, s)
	return time.Time{}
}

func (d fieldDecoder) outcome(i int, column string) model.Outcome {
	s := strings.TrimSpace(d.row.Fields[i])
	o, err := model.ParseOutcome(s)
	if err != nil {
		// An unreadable outcome must never count towards aggregates
		d.defaulted(column, s)
		return model.OutcomeRejected
	}
	return o
}

func decodeCampaign(d fieldDecoder) model.Campaign {
	return model.Campaign{
		ID:          d.str(0),
		Name:        d.str(1),
		Goal:        d.decimal(2, "goal"),
		Deadline:    d.date(3, "deadline"),
		Category:    d.str(4),
		RaisedTotal: d.decimal(5, "raisedTotal"),
	}
}

func decodeRewardTier(d fieldDecoder) model.RewardTier {
	quota := d.integer(3, "quota")
	if quota < 0 {
		d.defaulted("quota", d.str(3))
		quota = 0
	}
	return model.RewardTier{
		CampaignID:     d.str(0),
		Name:           d.str(1),
		MinAmount:      d.decimal(2, "minAmount"),
		RemainingQuota: quota,
	}
}

func decodePledge(d fieldDecoder) model.Pledge {
	return model.Pledge{
		ID:         d.str(0),
		UserID:     d.str(1),
		CampaignID: d.str(2),
		Amount:     d.decimal(3, "amount"),
		TierName:   strings.TrimSpace(d.str(4)),
		Outcome:    d.outcome(5, "outcome"),
		CreatedAt:  d.timestamp(6, "createdAt"),
	}
}

func decodeUser(d fieldDecoder) model.User {
	return model.User{
		ID:          d.str(0),
		Username:    d.str(1),
		DisplayName: d.str(2),
		Credential:  d.str(3),
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(model.DateLayout)
}
