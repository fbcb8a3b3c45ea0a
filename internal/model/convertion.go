package model

import (
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/questx-lab/eventreward/internal/entity"
)

const DefaultTimeLayout string = time.RFC3339Nano

func formatNullTime(t sql.NullTime) string {
	if !t.Valid {
		return ""
	}

	return t.Time.Format(DefaultTimeLayout)
}

func ConvertEvent(event *entity.Event) Event {
	if event == nil {
		return Event{}
	}

	return Event{
		ID:                   event.ID,
		Name:                 event.Name,
		Description:          event.Description,
		Location:             event.Location,
		OrganizerID:          event.OrganizerID,
		StartTime:            event.StartTime.Format(DefaultTimeLayout),
		EndTime:              event.EndTime.Format(DefaultTimeLayout),
		VotingStart:          event.VotingStart.Format(DefaultTimeLayout),
		VotingEnd:            event.VotingEnd.Format(DefaultTimeLayout),
		Capacity:             event.Capacity,
		RequiresRegistration: event.RequiresRegistration,
		Status:               string(event.Status),
		RegisteredCount:      event.RegisteredCount,
		ParticipantCount:     event.ParticipantCount,
		AttendeeCount:        event.AttendeeCount,
		Fingerprint:          event.Fingerprint,
		RewardLedgerID:       event.RewardLedgerID,
		CreatedAt:            event.CreatedAt.Format(DefaultTimeLayout),
	}
}

func ConvertParticipant(p *entity.EventParticipant) Participant {
	if p == nil {
		return Participant{}
	}

	return Participant{
		UserID:       p.UserID,
		Registered:   p.Registered,
		Attended:     p.Attended,
		RegisteredAt: formatNullTime(p.RegisteredAt),
		AttendedAt:   formatNullTime(p.AttendedAt),
	}
}

func ConvertLedgerEntry(e *entity.LedgerEntry) LedgerEntry {
	if e == nil {
		return LedgerEntry{}
	}

	return LedgerEntry{
		ID:         strconv.FormatInt(e.ID, 10),
		Kind:       string(e.Kind),
		Amount:     e.Amount,
		Reason:     e.Reason,
		OperatorID: e.OperatorID,
		CreatedAt:  e.CreatedAt.Format(DefaultTimeLayout),
	}
}

func ConvertCategory(c *entity.Category) Category {
	if c == nil {
		return Category{}
	}

	return Category{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Active:      c.Active,
		TotalVotes:  c.TotalVotes,
		CreatedBy:   c.CreatedBy,
		CreatedAt:   c.CreatedAt.Format(DefaultTimeLayout),
	}
}

func ConvertMerchItem(item *entity.MerchItem) MerchItem {
	if item == nil {
		return MerchItem{}
	}

	sizes := []string{}
	sizes = append(sizes, item.Sizes...)

	return MerchItem{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		ImageURL:    item.ImageURL,
		Category:    item.Category,
		Price:       item.Price,
		Stock:       item.Stock,
		MaxPerUser:  item.MaxPerUser,
		Active:      item.Active,
		Sizes:       sizes,
	}
}

func ConvertRedemption(r *entity.Redemption) Redemption {
	if r == nil {
		return Redemption{}
	}

	return Redemption{
		ID:           r.ID,
		UserID:       r.UserID,
		ItemID:       r.ItemID,
		Quantity:     r.Quantity,
		Size:         r.Size,
		CreditsSpent: r.CreditsSpent,
		Status:       string(r.Status),
		TrackingInfo: r.TrackingInfo,
		LedgerID:     r.LedgerID,
		CreatedAt:    r.CreatedAt.Format(DefaultTimeLayout),
	}
}

func ConvertPause(p *entity.Pause) Pause {
	if p == nil {
		return Pause{}
	}

	module, scope, _ := strings.Cut(p.ID, ":")
	return Pause{
		Module:    module,
		Scope:     scope,
		UpdatedBy: p.UpdatedBy,
		UpdatedAt: p.UpdatedAt.Format(DefaultTimeLayout),
	}
}
