package interview

import "strings"

// Predicate reports whether a record matches.
type Predicate[T any] func(T) bool

func All[T any](ps ...Predicate[T]) Predicate[T] {
	return func(v T) bool {
		for _, p := range ps {
			if p != nil && !p(v) {
				return false
			}
		}
		return true
	}
}

// Any matches when at least one non-nil predicate matches. Without predicates it matches everything.
func Any[T any](ps ...Predicate[T]) Predicate[T] {
	return func(v T) bool {
		matched, seen := false, false
		for _, p := range ps {
			if p == nil {
				continue
			}
			seen = true
			if p(v) {
				matched = true
				break
			}
		}
		return matched || !seen
	}
}

func Not[T any](p Predicate[T]) Predicate[T] {
	return func(v T) bool { return !p(v) }
}

// Filter keeps the items matching p, preserving order.
func Filter[T any](items []T, p Predicate[T]) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if p == nil || p(it) {
			out = append(out, it)
		}
	}
	return out
}

// Question predicates. Empty arguments yield nil, which All and Any skip.

func TextContains(sub string) Predicate[Question] {
	sub = strings.ToLower(strings.TrimSpace(sub))
	if sub == "" {
		return nil
	}
	return func(q Question) bool { return strings.Contains(strings.ToLower(q.Text), sub) }
}

func InUnit(id string) Predicate[Question] {
	if id == "" {
		return nil
	}
	return func(q Question) bool { return q.UnitID == id }
}

func WithDifficulty(id string) Predicate[Question] {
	if id == "" {
		return nil
	}
	return func(q Question) bool { return q.DifficultyID == id }
}

func AtLevel(id string) Predicate[Question] {
	if id == "" {
		return nil
	}
	return func(q Question) bool { return q.LevelID == id }
}

func InGroup(id string) Predicate[Question] {
	if id == "" {
		return nil
	}
	return func(q Question) bool { return q.GroupID == id }
}

func MinWeight(w float64) Predicate[Question] {
	if w <= 0 {
		return nil
	}
	return func(q Question) bool { return q.Weight >= w }
}

// QuestionPredicate composes the predicates for a QuestionFilter; paging is ignored.
func QuestionPredicate(f QuestionFilter, minWeight float64) Predicate[Question] {
	return All(
		TextContains(f.TextSearch),
		InUnit(f.UnitID),
		WithDifficulty(f.DifficultyID),
		AtLevel(f.LevelID),
		InGroup(f.GroupID),
		MinWeight(minWeight),
	)
}
