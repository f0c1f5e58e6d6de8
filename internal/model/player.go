package model

import (
	"strconv"

	"github.com/pkg/errors"
)

// Player indexes one side of the clock.
type Player int

const (
	PlayerOne Player = iota
	PlayerTwo
)

var ErrInvalidPlayer = errors.New("invalid player")

func (p Player) Valid() bool {
	return p == PlayerOne || p == PlayerTwo
}

// Other returns the opponent of p.
func (p Player) Other() Player {
	return 1 - p
}

func (p Player) String() string {
	switch p {
	case PlayerOne:
		return "one"
	case PlayerTwo:
		return "two"
	}
	return "player(" + strconv.Itoa(int(p)) + ")"
}

// ParsePlayer accepts the numeric index ("0", "1") or the name ("one", "two").
func ParsePlayer(s string) (Player, error) {
	switch s {
	case "0", "one":
		return PlayerOne, nil
	case "1", "two":
		return PlayerTwo, nil
	}
	return 0, errors.Wrapf(ErrInvalidPlayer, "parse %q", s)
}

type ClientPlayer struct {
	TimeLeft int64  `json:"timeLeft"`
	Display  string `json:"display"`
	Minutes  int    `json:"minutes"`
	Active   bool   `json:"active"`
	Enabled  bool   `json:"enabled"`
	Flagged  bool   `json:"flagged"`
}
