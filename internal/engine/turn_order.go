package engine

// GameOrder is the standard tournament draft: 6 bans, 6 picks, 4 bans, 4 picks.
var GameOrder = []TurnStep{
	// Ban Phase 1
	{Team: SideBlue, Action: ActionBan, Phase: PhaseBan1},
	{Team: SideRed, Action: ActionBan, Phase: PhaseBan1},
	{Team: SideBlue, Action: ActionBan, Phase: PhaseBan1},
	{Team: SideRed, Action: ActionBan, Phase: PhaseBan1},
	{Team: SideBlue, Action: ActionBan, Phase: PhaseBan1},
	{Team: SideRed, Action: ActionBan, Phase: PhaseBan1},
	// Pick Phase 1
	{Team: SideBlue, Action: ActionPick, Phase: PhasePick1},
	{Team: SideRed, Action: ActionPick, Phase: PhasePick1},
	{Team: SideRed, Action: ActionPick, Phase: PhasePick1},
	{Team: SideBlue, Action: ActionPick, Phase: PhasePick1},
	{Team: SideBlue, Action: ActionPick, Phase: PhasePick1},
	{Team: SideRed, Action: ActionPick, Phase: PhasePick1},
	// Ban Phase 2
	{Team: SideRed, Action: ActionBan, Phase: PhaseBan2},
	{Team: SideBlue, Action: ActionBan, Phase: PhaseBan2},
	{Team: SideRed, Action: ActionBan, Phase: PhaseBan2},
	{Team: SideBlue, Action: ActionBan, Phase: PhaseBan2},
	// Pick Phase 2
	{Team: SideRed, Action: ActionPick, Phase: PhasePick2},
	{Team: SideBlue, Action: ActionPick, Phase: PhasePick2},
	{Team: SideBlue, Action: ActionPick, Phase: PhasePick2},
	{Team: SideRed, Action: ActionPick, Phase: PhasePick2},
}

// TurnStep is the (team, action, phase) owed at one index of GameOrder.
type TurnStep struct {
	Team   Side   `json:"team"`
	Action Action `json:"type"`
	Phase  Phase  `json:"phase"`
}

// CurrentTurn returns the step owed at turn, or false once the draft is exhausted.
func CurrentTurn(turn int) (TurnStep, bool) {
	if turn < 0 || turn >= len(GameOrder) {
		return TurnStep{}, false
	}
	return GameOrder[turn], true
}

func TotalTurns() int { return len(GameOrder) }

// PicksPerTeam is how many picks each side owns in a full draft.
const PicksPerTeam = 5
