package domain

// Kind distinguishes the structural role of a location within a route.
type Kind string

const (
	KindStart Kind = "start"
	KindStop  Kind = "stop"
	KindEnd   Kind = "end"
)

// Location is one optimization input: a route point plus its structural
// role and optional pinned position.
//
// A fixed stop (FixedSeq true) must carry a 1-based Seq strictly between the
// start (always position 1) and the end (always the last position). Free
// stops leave Seq nil and are ordered by the heuristic.
type Location struct {
	ID       string
	Point    RoutePoint
	Kind     Kind
	FixedSeq bool
	Seq      *int
}

// ValidateLocations checks the structural invariants of an optimization
// input set. It returns a *ValidationError describing the first violation
// found, or nil. No provider calls happen before this passes.
func ValidateLocations(locations []Location) *ValidationError {
	if len(locations) < 2 {
		return NewValidationError(CodeRouteValidation,
			"at least a start and an end location are required, got %d", len(locations))
	}

	n := len(locations)
	starts, ends := 0, 0
	seenIDs := make(map[string]string, n)
	seenSeq := make(map[int]string, n)

	for _, loc := range locations {
		if !loc.Point.ValidCoords() {
			return NewValidationError(CodeInvalidCoordinates,
				"location %q has out-of-range coordinates (%f, %f)", loc.ID, loc.Point.Lat, loc.Point.Lon)
		}

		if other, ok := seenIDs[loc.ID]; ok {
			return NewValidationError(CodeDuplicateID,
				"location id %q appears more than once (%q)", loc.ID, other)
		}
		seenIDs[loc.ID] = loc.ID

		switch loc.Kind {
		case KindStart:
			starts++
			if starts > 1 {
				return NewValidationError(CodeMultipleStart, "more than one start location")
			}
			if loc.Seq != nil && *loc.Seq != 1 {
				return NewValidationError(CodeInvalidFixedSeq,
					"start location %q declares seq %d, start is always position 1", loc.ID, *loc.Seq)
			}
		case KindEnd:
			ends++
			if ends > 1 {
				return NewValidationError(CodeMultipleEnd, "more than one end location")
			}
			if loc.Seq != nil && *loc.Seq != n {
				return NewValidationError(CodeInvalidFixedSeq,
					"end location %q declares seq %d, end is always position %d", loc.ID, *loc.Seq, n)
			}
		case KindStop:
			if loc.FixedSeq {
				if loc.Seq == nil {
					return NewValidationError(CodeInvalidFixedSeq,
						"fixed stop %q is missing its seq", loc.ID)
				}
				seq := *loc.Seq
				if seq <= 1 || seq >= n {
					return NewValidationError(CodeInvalidFixedSeq,
						"fixed stop %q declares seq %d, must be between 2 and %d", loc.ID, seq, n-1)
				}
				if other, ok := seenSeq[seq]; ok {
					return NewValidationError(CodeDuplicateFixedSeq,
						"locations %q and %q both declare fixed seq %d", other, loc.ID, seq)
				}
				seenSeq[seq] = loc.ID
			}
		default:
			return NewValidationError(CodeRouteValidation,
				"location %q has unknown kind %q", loc.ID, loc.Kind)
		}
	}

	if starts == 0 {
		return NewValidationError(CodeMissingStart, "no start location")
	}
	if ends == 0 {
		return NewValidationError(CodeMissingEnd, "no end location")
	}

	return nil
}
