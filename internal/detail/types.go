package detail

import (
	"errors"
	"fmt"

	"github.com/mauv0809/ballcrusher-stats/internal/daystats"
)

// HeavyViewWarning is shown once per day before its full leaderboard is revealed.
const HeavyViewWarning = "Loading the full leaderboard may strain your device. Continue only if you need the details."

var (
	ErrUnknownDay    = errors.New("unknown day")
	ErrNotConfirming = errors.New("panel is not awaiting confirmation")
)

// State is the lifecycle of a single day panel.
type State int

const (
	Collapsed State = iota
	Confirming
	Loading
	Expanded
)

func (s State) String() string {
	switch s {
	case Collapsed:
		return "collapsed"
	case Confirming:
		return "confirming"
	case Loading:
		return "loading"
	case Expanded:
		return "expanded"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// View is a point-in-time copy of a panel for callers outside the board.
type View struct {
	Day          int                    `json:"day"`
	State        State                  `json:"state"`
	Acknowledged bool                   `json:"acknowledged"`
	Warning      string                 `json:"warning,omitempty"`
	Players      []daystats.PlayerEntry `json:"players,omitempty"`
}

type panel struct {
	record       *daystats.DayRecord
	state        State
	acknowledged bool
	token        uint64
}
