package engine

import (
	"fmt"
	"sort"

	log "github.com/sirupsen/logrus"
)

// Diversion is a planned rotation sequence on one cell that stops a hazard
// from entering it. Remaining is the number of hazard steps left before it
// reaches the cell.
type Diversion struct {
	Pos       Position `json:"pos"`
	Remaining int      `json:"remaining"`
	Actions   []Action `json:"actions"`
}

// Hazard is a tracked moving obstacle
type Hazard struct {
	ID   int
	Node PathNode
	// Urgency counts down to the last turn a diversion can still be played.
	// Infinite when no diversion exists.
	Urgency int
	Safe    bool
	// Unstoppable is set when the hazard reaches the player route and no
	// diversion was found on the way
	Unstoppable bool

	diversions []*Diversion
}

// Diversions returns a copy of the pending diversions in simulation order
func (h *Hazard) Diversions() []Diversion {
	out := make([]Diversion, 0, len(h.diversions))
	for _, d := range h.diversions {
		out = append(out, Diversion{
			Pos:       d.Pos,
			Remaining: d.Remaining,
			Actions:   append([]Action(nil), d.Actions...),
		})
	}
	return out
}

func (h *Hazard) view() HazardView {
	return HazardView{
		ID:         h.ID,
		Node:       h.Node,
		Urgency:    h.Urgency,
		Safe:       h.Safe,
		Diversions: h.Diversions(),
	}
}

// HazardPlanner registers hazards, simulates their trajectory through the
// grid and schedules diversions before they reach the player route
type HazardPlanner struct {
	grid     *Grid
	route    *Solution
	hazards  map[int]*Hazard
	nextID   int
	retired  int
	warnings []string
}

// NewHazardPlanner creates a planner protecting the committed route
func NewHazardPlanner(grid *Grid, route *Solution) *HazardPlanner {
	return &HazardPlanner{
		grid:    grid,
		route:   route,
		hazards: make(map[int]*Hazard),
	}
}

// Observe registers a hazard seen at pos, entered from entry. An observation
// matching the current node of a tracked hazard is ignored and reported with
// false. A new hazard is simulated forward at once; if it leaves the grid it
// is marked safe and not tracked.
func (p *HazardPlanner) Observe(pos Position, entry Direction) (*Hazard, bool) {
	node := PathNode{Pos: pos, Entry: entry}
	for _, h := range p.hazards {
		if h.Node == node {
			return h, false
		}
	}
	if _, ok := p.grid.Cell(pos); !ok || !entry.Valid() {
		log.WithField("node", node.String()).Debug("ignoring hazard outside the grid")
		return nil, false
	}

	h := &Hazard{ID: p.nextID, Node: node, Urgency: Infinite}
	p.nextID++
	p.simulate(h)
	if !h.Safe {
		p.hazards[h.ID] = h
	}
	return h, true
}

func (p *HazardPlanner) simulate(h *Hazard) {
	// a trajectory longer than every (cell, side) pair is a loop
	limit := p.grid.Len()*4 + 1
	node := h.Node

	for distance := 1; distance <= limit; distance++ {
		next, ok := p.grid.Advance(node.Pos, node.Entry)
		if !ok {
			h.Safe = true
			return
		}
		node = next
		cell, _ := p.grid.Cell(node.Pos)
		if !cell.HasEntry(node.Entry) {
			// crashes against the next wall
			h.Safe = true
			return
		}

		if playerEntry, onRoute := p.route.Entry(node.Pos); onRoute {
			if !cell.Locked() {
				if actions, ok := p.divert(cell, node.Entry, playerEntry, true); ok {
					p.record(h, node.Pos, distance, actions)
				}
			}
			if len(h.diversions) == 0 {
				h.Unstoppable = true
				msg := fmt.Sprintf("hazard %d reaches the route at %s with no diversion", h.ID, node.Pos)
				p.warnings = append(p.warnings, msg)
				log.WithFields(log.Fields{
					"hazard":   h.ID,
					"at":       node.Pos.String(),
					"distance": distance,
				}).Warn("unstoppable hazard")
			}
			return
		}

		if cell.Locked() {
			continue
		}
		if actions, ok := p.divert(cell, node.Entry, noDirection, false); ok {
			p.record(h, node.Pos, distance, actions)
		}
	}

	log.WithField("hazard", h.ID).Debug("hazard loops without reaching the route")
	h.Safe = true
}

// divert tries left, right and half turns on cell and returns the first that
// closes hazardEntry. Route cells must keep admitting playerEntry. The cell
// orientation is restored before returning.
func (p *HazardPlanner) divert(cell *Connector, hazardEntry, playerEntry Direction, onRoute bool) ([]Action, bool) {
	orientation := cell.Orientation()
	defer cell.restore(orientation)

	options := [][]Action{turnLeft}
	if !cell.MirrorInvariant() {
		options = append(options, turnRight)
	}
	if !cell.HalfTurnInvariant() {
		options = append(options, turnHalf)
	}

	for _, actions := range options {
		cell.restore(orientation)
		for _, a := range actions {
			cell.Rotate(a)
		}
		if cell.HasEntry(hazardEntry) {
			continue
		}
		if onRoute && !cell.HasEntry(playerEntry) {
			continue
		}
		return actions, true
	}
	return nil, false
}

// record queues a diversion. Opportunities are found in increasing distance,
// so the urgency ends on the farthest cell where the hazard can still be
// stopped: urgency counts the turns left before the last chance to act, not
// the turns to the nearest chance. A two step diversion has to start one
// turn earlier.
func (p *HazardPlanner) record(h *Hazard, pos Position, distance int, actions []Action) {
	h.diversions = append(h.diversions, &Diversion{
		Pos:       pos,
		Remaining: distance,
		Actions:   append([]Action(nil), actions...),
	})
	h.Urgency = distance - (len(actions) - 1)
}

// Tick advances every tracked hazard one step and counts down its diversion
// distances and urgency. Hazards that can no longer move are retired.
func (p *HazardPlanner) Tick() {
	for _, h := range p.sorted() {
		next, ok := p.grid.Advance(h.Node.Pos, h.Node.Entry)
		if !ok {
			p.retire(h)
			continue
		}
		h.Node = next
		for _, d := range h.diversions {
			d.Remaining--
		}
		if h.Urgency != Infinite {
			h.Urgency--
		}
	}
}

// InterceptOne plays one rotation for the most urgent hazard. It returns
// false when no diversion can be played this turn.
func (p *HazardPlanner) InterceptOne() (Instruction, bool) {
	var target *Hazard
	for _, h := range p.sorted() {
		if h.Safe || h.Urgency == Infinite {
			continue
		}
		if target == nil || h.Urgency < target.Urgency {
			target = h
		}
	}
	if target == nil {
		return Instruction{}, false
	}

	for _, d := range target.diversions {
		if len(d.Actions) == 0 || d.Remaining <= len(d.Actions) {
			continue
		}
		cell, ok := p.grid.Cell(d.Pos)
		if !ok || cell.Occupied() {
			continue
		}

		action := d.Actions[0]
		onRoute := p.route.Contains(d.Pos)
		if onRoute {
			cell.Unlock()
		}
		cell.Rotate(action)
		if onRoute {
			cell.Lock()
		}
		d.Actions = d.Actions[1:]

		instr := Instruction{Pos: d.Pos, Action: action, Distance: d.Remaining}
		log.WithFields(log.Fields{
			"hazard":    target.ID,
			"cell":      d.Pos.String(),
			"action":    action.String(),
			"remaining": d.Remaining,
		}).Debug("diverting hazard")
		if len(d.Actions) == 0 {
			p.retire(target)
		}
		return instr, true
	}
	return Instruction{}, false
}

func (p *HazardPlanner) retire(h *Hazard) {
	h.Safe = true
	h.diversions = nil
	delete(p.hazards, h.ID)
	p.retired++
}

func (p *HazardPlanner) sorted() []*Hazard {
	out := make([]*Hazard, 0, len(p.hazards))
	for _, h := range p.hazards {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Hazard returns a tracked hazard by id
func (p *HazardPlanner) Hazard(id int) (*Hazard, bool) {
	h, ok := p.hazards[id]
	return h, ok
}

// Hazards returns a view of every tracked hazard ordered by id
func (p *HazardPlanner) Hazards() []HazardView {
	hazards := p.sorted()
	out := make([]HazardView, 0, len(hazards))
	for _, h := range hazards {
		out = append(out, h.view())
	}
	return out
}

// Active returns the number of tracked hazards
func (p *HazardPlanner) Active() int { return len(p.hazards) }

// Retired returns the number of hazards resolved after being tracked
func (p *HazardPlanner) Retired() int { return p.retired }

// Warnings returns the unstoppable hazard warnings raised so far
func (p *HazardPlanner) Warnings() []string {
	return append([]string(nil), p.warnings...)
}
