package domain

import (
	"encoding/json"
	"time"
)

// RawPlayerStats is the stats blob returned by the KIXEYE stats service.
// Only the nine battle counters and the profile fields below are consumed
// directly; everything else is carried through untouched in Extra so the
// response keeps whatever the upstream adds without a schema change here.
type RawPlayerStats struct {
	Alias  string `json:"alias"`
	Level  int    `json:"level"`
	Medals int    `json:"medals"`
	Planet string `json:"planet"`
	Since  string `json:"since"`
	Seen   string `json:"seen"`

	BaseAttackWin  float64 `json:"baseAttackWin"`
	BaseAttackDraw float64 `json:"baseAttackDraw"`
	BaseAttackLoss float64 `json:"baseAttackLoss"`

	BaseDefenceWin  float64 `json:"baseDefenceWin"`
	BaseDefenceDraw float64 `json:"baseDefenceDraw"`
	BaseDefenceLoss float64 `json:"baseDefenceLoss"`

	FleetWin  float64 `json:"fleetWin"`
	FleetDraw float64 `json:"fleetDraw"`
	FleetLoss float64 `json:"fleetLoss"`

	Extra map[string]json.RawMessage `json:"-"`
}

var rawStatsKnownKeys = []string{
	"alias", "level", "medals", "planet", "since", "seen",
	"baseAttackWin", "baseAttackDraw", "baseAttackLoss",
	"baseDefenceWin", "baseDefenceDraw", "baseDefenceLoss",
	"fleetWin", "fleetDraw", "fleetLoss",
}

func (s *RawPlayerStats) UnmarshalJSON(data []byte) error {
	type plain RawPlayerStats
	var known plain
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, k := range rawStatsKnownKeys {
		delete(all, k)
	}
	if len(all) > 0 {
		known.Extra = all
	}

	*s = RawPlayerStats(known)
	return nil
}

func (s RawPlayerStats) MarshalJSON() ([]byte, error) {
	type plain RawPlayerStats
	base, err := json.Marshal(plain(s))
	if err != nil {
		return nil, err
	}
	if len(s.Extra) == 0 {
		return base, nil
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for k, v := range s.Extra {
		if _, ok := merged[k]; !ok {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

// BattleCategoryStats holds the derived aggregates for one battle category
// (fleet, base attack or base defence). Never persisted, recomputed per
// request. Both ratios are fixed to two decimal places.
type BattleCategoryStats struct {
	TotalBattles   int    `json:"totalBattles"`
	WinratePercent string `json:"winratePercent"`
	KDRatio        string `json:"kdRatio"`
}

// RecordOrigin tags which path Reconcile took to produce a UserRecord, so
// callers and logs can tell a persisted record from a synthetic one without
// comparing timestamps.
type RecordOrigin string

const (
	RecordExisting RecordOrigin = "existing"
	RecordUpdated  RecordOrigin = "updated"
	RecordCreated  RecordOrigin = "created"
	RecordDegraded RecordOrigin = "degraded"
)

// UserRecord is the persisted per-player record keyed by the public player
// identifier. UsernameHistory is append-only.
type UserRecord struct {
	ID              string       `json:"id"`
	UsernameHistory []string     `json:"usernameHistory"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
	Origin          RecordOrigin `json:"-"`
}

// HasUsername reports whether alias already appears in the history.
func (u *UserRecord) HasUsername(alias string) bool {
	for _, name := range u.UsernameHistory {
		if name == alias {
			return true
		}
	}
	return false
}

// WinrateSnapshot is one persisted monthly winrate record. At most one
// snapshot exists per (user, month, year); writes overwrite.
type WinrateSnapshot struct {
	ID                 string    `json:"-"`
	UserID             int64     `json:"userId"`
	Month              int       `json:"month"`
	Year               int       `json:"year"`
	BaseAttackWinrate  float64   `json:"baseAttackWinrate"`
	BaseDefenceWinrate float64   `json:"baseDefenceWinrate"`
	FleetWinrate       float64   `json:"fleetWinrate"`
	CreatedAt          time.Time `json:"-"`
	UpdatedAt          time.Time `json:"-"`
}

// Winrates carries the three current winrate percentages for a snapshot write.
type Winrates struct {
	BaseAttack  float64 `json:"baseAttackWinrate"`
	BaseDefence float64 `json:"baseDefenceWinrate"`
	Fleet       float64 `json:"fleetWinrate"`
}

// PlayerDetails is the assembled pipeline result for one (player, year)
// request. AvatarURL is empty when no large avatar variant exists.
type PlayerDetails struct {
	UserID           int64               `json:"userId"`
	Stats            RawPlayerStats      `json:"playerData"`
	BaseAttackStats  BattleCategoryStats `json:"baseAttackStats"`
	BaseDefenceStats BattleCategoryStats `json:"baseDefenceStats"`
	FleetStats       BattleCategoryStats `json:"fleetStats"`
	AvatarURL        string              `json:"avatarUrl,omitempty"`
	HistoricalStats  []WinrateSnapshot   `json:"historicalStats"`
	UsernameHistory  []string            `json:"usernameHistory"`
}
