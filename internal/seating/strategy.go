package seating

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/iliyamo/classroom-seating/internal/model"
)

// Order is the direction of an alphabetical placement.
type Order string

const (
	Ascending  Order = "asc"
	Descending Order = "desc"
)

// Method orders the unplaced students when completing a plan.
type Method string

const (
	MethodRandom       Method = "random"
	MethodAlphabetical Method = "alphabetical"
)

// Strategy fills a store from a roster and returns how many students it
// placed.
type Strategy interface {
	Apply(s *Store, students []model.Student) int
}

// Random seats students uniformly at random and replaces the whole store.
type Random struct {
	Rand *rand.Rand
}

// Alphabetical seats students sorted by surname then given name on seats
// 1..n and replaces the whole store.
type Alphabetical struct {
	Order Order
}

// Complete fills only the free seats with the students not yet placed.
// Existing assignments are left untouched.
type Complete struct {
	Method Method
	Order  Order
	Rand   *rand.Rand
}

var (
	_ Strategy = Random{}
	_ Strategy = Alphabetical{}
	_ Strategy = Complete{}
)

// ParseStrategy maps the request vocabulary to a Strategy.
//
// name is one of "random", "alphabetical" or "complete"; order applies to
// alphabetical placements and method to "complete".
func ParseStrategy(name string, order Order, method Method, rng *rand.Rand) (Strategy, error) {
	if order == "" {
		order = Ascending
	}
	if order != Ascending && order != Descending {
		return nil, fmt.Errorf("%w: order %q", ErrUnknownStrategy, order)
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "random":
		return Random{Rand: rng}, nil
	case "alphabetical":
		return Alphabetical{Order: order}, nil
	case "complete":
		if method == "" {
			method = MethodRandom
		}
		if method != MethodRandom && method != MethodAlphabetical {
			return nil, fmt.Errorf("%w: method %q", ErrUnknownStrategy, method)
		}
		return Complete{Method: method, Order: order, Rand: rng}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

// PlaceAllRandom shuffles the seat numbers and the roster independently and
// zips them up to min(len(students), TotalSeats).
func PlaceAllRandom(s *Store, students []model.Student, rng *rand.Rand) int {
	return Random{Rand: rng}.Apply(s, students)
}

// PlaceAllAlphabetical seats the sorted roster on seats 1..n.
func PlaceAllAlphabetical(s *Store, students []model.Student, order Order) int {
	return Alphabetical{Order: order}.Apply(s, students)
}

// CompleteRemaining fills the free seats in numeric order with the
// unplaced students ordered by method.
func CompleteRemaining(s *Store, students []model.Student, method Method, order Order, rng *rand.Rand) int {
	return Complete{Method: method, Order: order, Rand: rng}.Apply(s, students)
}

func (r Random) Apply(s *Store, students []model.Student) int {
	rng := orDefault(r.Rand)
	seats := make([]int, s.TotalSeats())
	for i := range seats {
		seats[i] = i + 1
	}
	ids := studentIDs(uniqueStudents(students))
	rng.Shuffle(len(seats), func(i, j int) { seats[i], seats[j] = seats[j], seats[i] })
	rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	n := min(len(ids), len(seats))
	s.replace(seats[:n], ids[:n])
	return n
}

func (a Alphabetical) Apply(s *Store, students []model.Student) int {
	sorted := SortStudents(uniqueStudents(students), a.Order)
	n := min(len(sorted), s.TotalSeats())
	seats := make([]int, n)
	for i := range seats {
		seats[i] = i + 1
	}
	s.replace(seats, studentIDs(sorted[:n]))
	return n
}

func (c Complete) Apply(s *Store, students []model.Student) int {
	unplaced := make([]model.Student, 0, len(students))
	for _, st := range uniqueStudents(students) {
		if _, ok := s.SeatOf(st.ID); !ok {
			unplaced = append(unplaced, st)
		}
	}
	switch c.Method {
	case MethodAlphabetical:
		unplaced = SortStudents(unplaced, c.Order)
	default:
		rng := orDefault(c.Rand)
		rng.Shuffle(len(unplaced), func(i, j int) { unplaced[i], unplaced[j] = unplaced[j], unplaced[i] })
	}
	free := s.FreeSeats()
	n := min(len(free), len(unplaced))
	for i := 0; i < n; i++ {
		s.set(free[i], unplaced[i].ID)
	}
	return n
}

// SortStudents returns a copy of students ordered by surname, then given
// name, compared case-insensitively.  Ties fall back to the raw names and
// finally the id so the order is total and stable.  Descending reverses
// the whole comparison.
func SortStudents(students []model.Student, order Order) []model.Student {
	out := slices.Clone(students)
	slices.SortStableFunc(out, func(a, b model.Student) int {
		c := compareStudents(a, b)
		if order == Descending {
			return -c
		}
		return c
	})
	return out
}

func compareStudents(a, b model.Student) int {
	if c := strings.Compare(strings.ToLower(a.LastName), strings.ToLower(b.LastName)); c != 0 {
		return c
	}
	if c := strings.Compare(strings.ToLower(a.FirstName), strings.ToLower(b.FirstName)); c != 0 {
		return c
	}
	if c := strings.Compare(a.LastName, b.LastName); c != 0 {
		return c
	}
	if c := strings.Compare(a.FirstName, b.FirstName); c != 0 {
		return c
	}
	switch {
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	}
	return 0
}

// uniqueStudents drops zero ids and repeated roster entries, keeping the
// first occurrence.
func uniqueStudents(students []model.Student) []model.Student {
	seen := make(map[uint64]bool, len(students))
	out := make([]model.Student, 0, len(students))
	for _, st := range students {
		if st.ID == 0 || seen[st.ID] {
			continue
		}
		seen[st.ID] = true
		out = append(out, st)
	}
	return out
}

func studentIDs(students []model.Student) []uint64 {
	ids := make([]uint64, len(students))
	for i, st := range students {
		ids[i] = st.ID
	}
	return ids
}

func orDefault(rng *rand.Rand) *rand.Rand {
	if rng != nil {
		return rng
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}
