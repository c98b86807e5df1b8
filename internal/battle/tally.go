package battle

// Threshold is the number of votes one side needs to win.
func Threshold(judgeCount int) int {
	return judgeCount/2 + 1
}

// Tally counts the votes of b. A side wins once it reaches the majority
// threshold. An OMT majority asks for a rerun and never decides; an even split
// stays undecided.
func Tally(b *Battle, votes []Vote, judgeCount int) Outcome {
	out := Outcome{Verdict: Undecided, Threshold: Threshold(judgeCount), Cast: len(votes)}
	if b.Left == nil || b.Right == nil {
		return out
	}

	for _, v := range votes {
		switch {
		case v.OMT:
			out.OMT++
		case v.WinnerEntry != 0 && v.WinnerEntry == b.Left.EntryID():
			out.Left++
		case v.WinnerEntry != 0 && v.WinnerEntry == b.Right.EntryID():
			out.Right++
		}
	}

	switch {
	case out.Left >= out.Threshold:
		out.Verdict, out.Winner = Decided, b.Left
	case out.Right >= out.Threshold:
		out.Verdict, out.Winner = Decided, b.Right
	case out.OMT >= out.Threshold:
		out.Verdict = OneMoreTime
	}
	return out
}
