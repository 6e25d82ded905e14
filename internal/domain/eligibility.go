package domain

// CanContribute reports whether the sale currently accepts contributions.
func CanContribute(s PresaleSnapshot) bool {
	return s.Active && !s.Finalized && s.TimeRemaining > 0
}

// HasEnded is the strict negation of CanContribute: the two predicates
// partition all snapshots into exactly two disjoint presentation states
// (contribution form vs. "ended" notice).
func HasEnded(s PresaleSnapshot) bool {
	return !CanContribute(s)
}

// CanClaim reports whether the identity may claim its allocation. A
// zero-contribution identity is allowed through here; the contract itself
// rejects claims with nothing to pay out.
func CanClaim(s PresaleSnapshot, p UserPosition) bool {
	return s.Finalized && !p.HasClaimed
}
