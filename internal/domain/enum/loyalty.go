package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// CampaignType is the reward a loyalty campaign grants
type CampaignType int

const (
	CampaignTypePointsMultiplier CampaignType = iota
	CampaignTypeBonusPoints
)

var campaignTypeNames = []string{"points_multiplier", "bonus_points"}

func (t CampaignType) String() string { return nameOf(campaignTypeNames, int(t)) }

func ParseCampaignType(name string) (CampaignType, bool) {
	i, ok := indexOf(campaignTypeNames, name)
	return CampaignType(i), ok
}

func (t CampaignType) MarshalJSON() ([]byte, error) { return json.Marshal(t.String()) }

func (t *CampaignType) UnmarshalJSON(data []byte) error {
	i, err := unmarshalName(data, campaignTypeNames, "campaign type")
	*t = CampaignType(i)
	return err
}

func (t CampaignType) Value() (driver.Value, error) { return int64(t), nil }

func (t *CampaignType) Scan(value interface{}) error {
	*t = CampaignType(scanInt(value))
	return nil
}

// CampaignStatus is the lifecycle state of a campaign
type CampaignStatus int

const (
	CampaignStatusDraft CampaignStatus = iota
	CampaignStatusActive
	CampaignStatusPaused
	CampaignStatusEnded
)

var campaignStatusNames = []string{"draft", "active", "paused", "ended"}

func (s CampaignStatus) String() string { return nameOf(campaignStatusNames, int(s)) }

func ParseCampaignStatus(name string) (CampaignStatus, bool) {
	i, ok := indexOf(campaignStatusNames, name)
	return CampaignStatus(i), ok
}

func (s CampaignStatus) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

func (s *CampaignStatus) UnmarshalJSON(data []byte) error {
	i, err := unmarshalName(data, campaignStatusNames, "campaign status")
	*s = CampaignStatus(i)
	return err
}

func (s CampaignStatus) Value() (driver.Value, error) { return int64(s), nil }

func (s *CampaignStatus) Scan(value interface{}) error {
	*s = CampaignStatus(scanInt(value))
	return nil
}

// EventType is how a customer triggers an earning event
type EventType int

const (
	EventTypeQR EventType = iota
	EventTypeClick
)

var eventTypeNames = []string{"qr", "click"}

func (t EventType) String() string { return nameOf(eventTypeNames, int(t)) }

func ParseEventType(name string) (EventType, bool) {
	i, ok := indexOf(eventTypeNames, name)
	return EventType(i), ok
}

func (t EventType) MarshalJSON() ([]byte, error) { return json.Marshal(t.String()) }

func (t *EventType) UnmarshalJSON(data []byte) error {
	i, err := unmarshalName(data, eventTypeNames, "event type")
	*t = EventType(i)
	return err
}

func (t EventType) Value() (driver.Value, error) { return int64(t), nil }

func (t *EventType) Scan(value interface{}) error {
	*t = EventType(scanInt(value))
	return nil
}

// PointSource records why a customer's points balance changed
type PointSource int

const (
	PointSourceOrder PointSource = iota
	PointSourceEvent
	PointSourceAdjustment
	PointSourceReversal
)

var pointSourceNames = []string{"order", "event", "adjustment", "reversal"}

func (s PointSource) String() string { return nameOf(pointSourceNames, int(s)) }

func (s PointSource) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

func (s *PointSource) UnmarshalJSON(data []byte) error {
	i, err := unmarshalName(data, pointSourceNames, "point source")
	*s = PointSource(i)
	return err
}

func (s PointSource) Value() (driver.Value, error) { return int64(s), nil }

func (s *PointSource) Scan(value interface{}) error {
	*s = PointSource(scanInt(value))
	return nil
}
