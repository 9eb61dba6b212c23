package season

import (
	"encoding/json"
	"math"
)

// SideRates are the normalized efficiency metrics for one side of a
// team season (own production or opponents').
type SideRates struct {
	Poss float64 `json:"poss"` // estimated possessions
	Eff  float64 `json:"eff"`  // points per 100 possessions
	Astr float64 `json:"astr"` // assist rate
	Tovr float64 `json:"tovr"` // turnover rate
	Efgp float64 `json:"efgp"` // effective field-goal %
	Orbp float64 `json:"orbp"` // offensive rebound %
	Ftr  float64 `json:"ftr"`  // free-throw rate
}

// AdvancedStats is the derived, non-authoritative view over a
// TeamSeasonStats snapshot. It is recomputed whenever the snapshot's
// totals change and is never mutated independently.
type AdvancedStats struct {
	Own     SideRates `json:"own"`
	Opp     SideRates `json:"opp"`
	RawPace float64   `json:"rawpace"`
}

// DeriveAdvanced computes the advanced metrics for both sides of a
// team season. A degenerate accumulator (say, zero field-goal
// attempts) yields NaN or infinite rates rather than a fault; callers
// treat such rows as statistically degenerate.
func DeriveAdvanced(ts *TeamSeasonStats) AdvancedStats {
	adv := AdvancedStats{
		// Offensive rebound % cross-references the other side's
		// defensive rebounds, so both sides' totals feed each rate.
		Own: deriveSide(&ts.Own, ts.Opp.DR),
		Opp: deriveSide(&ts.Opp, ts.Own.DR),
	}
	adv.RawPace = 0.5 * (adv.Own.Poss + adv.Opp.Poss) /
		(float64(ts.Wins) + float64(ts.Losses) + 0.125*float64(ts.TotOT))
	return adv
}

// sideRatesJSON is the wire form of SideRates. The rate fields are
// pointers so a degenerate NaN or infinite rate, which encoding/json
// refuses to emit, crosses the boundary as null instead of failing the
// whole snapshot.
type sideRatesJSON struct {
	Poss float64  `json:"poss"`
	Eff  *float64 `json:"eff"`
	Astr *float64 `json:"astr"`
	Tovr *float64 `json:"tovr"`
	Efgp *float64 `json:"efgp"`
	Orbp *float64 `json:"orbp"`
	Ftr  *float64 `json:"ftr"`
}

func (s SideRates) MarshalJSON() ([]byte, error) {
	return json.Marshal(sideRatesJSON{
		Poss: s.Poss,
		Eff:  rateOrNull(s.Eff),
		Astr: rateOrNull(s.Astr),
		Tovr: rateOrNull(s.Tovr),
		Efgp: rateOrNull(s.Efgp),
		Orbp: rateOrNull(s.Orbp),
		Ftr:  rateOrNull(s.Ftr),
	})
}

func (s *SideRates) UnmarshalJSON(data []byte) error {
	var raw sideRatesJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = SideRates{
		Poss: raw.Poss,
		Eff:  rateOrNaN(raw.Eff),
		Astr: rateOrNaN(raw.Astr),
		Tovr: rateOrNaN(raw.Tovr),
		Efgp: rateOrNaN(raw.Efgp),
		Orbp: rateOrNaN(raw.Orbp),
		Ftr:  rateOrNaN(raw.Ftr),
	}
	return nil
}

type advancedStatsJSON struct {
	Own     SideRates `json:"own"`
	Opp     SideRates `json:"opp"`
	RawPace *float64  `json:"rawpace"`
}

func (a AdvancedStats) MarshalJSON() ([]byte, error) {
	return json.Marshal(advancedStatsJSON{
		Own:     a.Own,
		Opp:     a.Opp,
		RawPace: rateOrNull(a.RawPace),
	})
}

func (a *AdvancedStats) UnmarshalJSON(data []byte) error {
	var raw advancedStatsJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*a = AdvancedStats{
		Own:     raw.Own,
		Opp:     raw.Opp,
		RawPace: rateOrNaN(raw.RawPace),
	}
	return nil
}

// rateOrNull maps a non-finite rate to nil so it serializes as null.
func rateOrNull(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func rateOrNaN(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

func deriveSide(t *Totals, oppDR int) SideRates {
	fga := float64(t.FGA)
	fta := float64(t.FTA)
	or := float64(t.OR)
	to := float64(t.TO)
	ast := float64(t.Ast)

	poss := fga + 0.44*fta - or + to
	return SideRates{
		Poss: poss,
		Eff:  100 * float64(t.Score) / poss,
		Astr: ast / (fga + 0.44*fta + ast + to),
		Tovr: to / (fga + 0.44*fta + to),
		Efgp: (float64(t.FGM) + 0.5*float64(t.FGM3)) / fga,
		Orbp: or / (or + float64(oppDR)),
		Ftr:  fta / fga,
	}
}
