// Package notation converts Hex games to and from SGF records (FF[4], GM[11]).
package notation

import (
	"ctchen222/Hex/internal/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	application = "Alcalyn_SGF:0.0.0"
	dateLayout  = "2006-01-02"
	resultVoid  = "Void"
)

var errSyntax = fmt.Errorf("%w: syntax error", hex.ErrParse)

var colors = [2]string{"B", "W"}

var resultTokens = map[hex.EndReason]string{
	hex.ReasonResignation: "Resign",
	hex.ReasonTimeout:     "Time",
	hex.ReasonForfeit:     "Forfeit",
}

// Source is the read-only view of a game that Encode needs. *hex.Game
// satisfies it.
type Source interface {
	Size() int
	InitialPlayers() [2]hex.Player
	StartedAt() time.Time
	State() hex.State
	Winner() int
	EndReason() hex.EndReason
	History() []hex.PlayedMove
}

// Encode renders g as a single-line SGF record. Seats are written as they
// were before any swap so that replaying the record reproduces the game.
func Encode(g Source) string {
	return Tree(g).String()
}

// Tree builds the SGF tree for g: a root node with the game information
// followed by one node per move.
func Tree(g Source) *GameTree {
	var root Node
	root.Add("FF", "4")
	root.Add("GM", "11")
	root.Add("AP", application)
	root.Add("PL", colors[0])
	root.Add("SZ", strconv.Itoa(g.Size()))
	if started := g.StartedAt(); !started.IsZero() {
		root.Add("DT", started.Format(dateLayout))
	}
	players := g.InitialPlayers()
	root.Add("PB", players[0].Name)
	root.Add("PW", players[1].Name)
	if re, ok := result(g); ok {
		root.Add("RE", re)
	}

	tree := &GameTree{Nodes: []Node{root}}
	if g.State() == hex.StateCanceled {
		// A void game keeps no move list.
		tree.Nodes = append(tree.Nodes, Node{})
		return tree
	}
	for _, pm := range g.History() {
		var n Node
		n.Add(colors[pm.PlayerIndex], FormatMove(pm.Move))
		tree.Nodes = append(tree.Nodes, n)
	}
	if len(tree.Nodes) == 1 {
		tree.Nodes = append(tree.Nodes, Node{})
	}
	return tree
}

// result returns the RE value. Games won by connection carry none since the
// moves already prove the winner.
func result(g Source) (string, bool) {
	switch g.State() {
	case hex.StateCanceled:
		return resultVoid, true
	case hex.StateEnded:
		token, ok := resultTokens[g.EndReason()]
		if !ok || g.Winner() == hex.NoPlayer {
			return "", false
		}
		return colors[g.Winner()] + "+" + token, true
	default:
		return "", false
	}
}

// Decode parses an SGF record and replays it through the engine. Every move
// is validated as if it were played live, so the returned game is always
// consistent. All errors match hex.ErrParse.
func Decode(s string, opts ...hex.Option) (*hex.Game, error) {
	tree, err := Parse(s)
	if err != nil {
		return nil, err
	}
	return Replay(tree, [2]string{}, opts...)
}

// DecodeWithIDs is Decode for records whose players have known identities.
// ids follow the PB/PW seating of the record.
func DecodeWithIDs(s string, ids [2]string, opts ...hex.Option) (*hex.Game, error) {
	tree, err := Parse(s)
	if err != nil {
		return nil, err
	}
	return Replay(tree, ids, opts...)
}

// Info is the game information held by a record's root node.
type Info struct {
	Size    int
	Players [2]hex.Player
	Date    time.Time
	Winner  int
	Reason  hex.EndReason
}

// ReadInfo validates and extracts the root node of tree.
func ReadInfo(tree *GameTree) (*Info, error) {
	if tree == nil || len(tree.Nodes) == 0 {
		return nil, fmt.Errorf("%w: game tree has no nodes", hex.ErrParse)
	}
	root := tree.Nodes[0]

	if ff, ok := root.Get("FF"); ok && ff != "4" {
		return nil, fmt.Errorf("%w: unsupported file format FF[%s]", hex.ErrParse, ff)
	}
	if gm, ok := root.Get("GM"); ok && gm != "11" {
		return nil, fmt.Errorf("%w: not a Hex record GM[%s]", hex.ErrParse, gm)
	}
	if pl, ok := root.Get("PL"); ok && pl != colors[0] {
		return nil, fmt.Errorf("%w: black always moves first, got PL[%s]", hex.ErrParse, pl)
	}

	sz, ok := root.Get("SZ")
	if !ok {
		return nil, fmt.Errorf("%w: missing SZ", hex.ErrParse)
	}
	size, err := strconv.Atoi(sz)
	if err != nil || size < 1 || size > MaxSize {
		return nil, fmt.Errorf("%w: invalid size SZ[%s]", hex.ErrParse, sz)
	}

	info := &Info{Size: size, Winner: hex.NoPlayer}
	info.Players[0].Name, _ = root.Get("PB")
	info.Players[1].Name, _ = root.Get("PW")

	if re, ok := root.Get("RE"); ok {
		info.Winner, info.Reason, err = parseResult(re)
		if err != nil {
			return nil, err
		}
	}
	if dt, ok := root.Get("DT"); ok {
		info.Date, err = time.Parse(dateLayout, dt)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid date DT[%s]", hex.ErrParse, dt)
		}
	}
	return info, nil
}

// Replay builds a game from an already parsed tree, seating players with the
// given ids.
func Replay(tree *GameTree, ids [2]string, opts ...hex.Option) (*hex.Game, error) {
	info, err := ReadInfo(tree)
	if err != nil {
		return nil, err
	}
	players := info.Players
	players[0].ID, players[1].ID = ids[0], ids[1]

	g, err := hex.NewGame(info.Size, players, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", hex.ErrParse, err)
	}
	if err := g.Start(); err != nil {
		return nil, fmt.Errorf("%w: %w", hex.ErrParse, err)
	}
	if !info.Date.IsZero() {
		g.SetStartedAt(info.Date)
	}

	for i, node := range tree.Nodes[1:] {
		if len(node.Properties) == 0 {
			continue
		}
		if err := replayNode(g, node); err != nil {
			return nil, fmt.Errorf("%w: node %d: %w", hex.ErrParse, i+1, err)
		}
	}

	switch info.Reason {
	case hex.ReasonNone:
	case hex.ReasonCancellation:
		err = g.Cancel()
	default:
		err = g.DeclareWinner(info.Winner, info.Reason)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: result does not fit the moves: %w", hex.ErrParse, err)
	}
	return g, nil
}

func replayNode(g *hex.Game, node Node) error {
	if len(node.Properties) != 1 {
		return fmt.Errorf("expected a single B or W property, got %d properties", len(node.Properties))
	}
	prop := node.Properties[0]
	player := -1
	for i, c := range colors {
		if prop.ID == c {
			player = i
		}
	}
	if player < 0 || len(prop.Values) != 1 {
		return fmt.Errorf("unexpected property %s", prop.ID)
	}
	m, err := ParseMove(prop.Values[0], g.Size())
	if err != nil {
		return err
	}
	return g.Move(m, player)
}

// parseResult reads values such as "B+Resign", "W+T" or "Void".
func parseResult(re string) (int, hex.EndReason, error) {
	if re == resultVoid || re == "0" {
		return hex.NoPlayer, hex.ReasonCancellation, nil
	}
	color, token, ok := strings.Cut(re, "+")
	if !ok {
		return 0, "", fmt.Errorf("%w: unknown result RE[%s]", hex.ErrParse, re)
	}
	winner := -1
	for i, c := range colors {
		if color == c {
			winner = i
		}
	}
	if winner < 0 {
		return 0, "", fmt.Errorf("%w: unknown result RE[%s]", hex.ErrParse, re)
	}
	for reason, t := range resultTokens {
		if token == t || token == t[:1] {
			return winner, reason, nil
		}
	}
	return 0, "", fmt.Errorf("%w: unknown result RE[%s]", hex.ErrParse, re)
}
