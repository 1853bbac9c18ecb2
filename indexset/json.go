package indexset

import (
	"encoding/json"
	"fmt"
)

// MarshalJSON encodes the set as a list of [low,high) pairs.
func (s Set) MarshalJSON() ([]byte, error) {
	pairs := make([][2]int, 0, len(s.ranges))
	for _, r := range s.ranges {
		pairs = append(pairs, [2]int{r.Low, r.High})
	}
	return json.Marshal(pairs)
}

// UnmarshalJSON decodes a list of [low,high) pairs.
func (s *Set) UnmarshalJSON(b []byte) error {
	var pairs [][2]int
	if err := json.Unmarshal(b, &pairs); err != nil {
		return err
	}

	var out Set
	for _, p := range pairs {
		if p[0] < 0 || p[1] < p[0] {
			return fmt.Errorf("indexset: bad range [%d,%d)", p[0], p[1])
		}
		out.InsertRange(p[0], p[1])
	}
	*s = out
	return nil
}
