package workflow

// upstreamRef is the upstream of the checked-out branch.
const upstreamRef = "@{u}"

// DefaultWIPKeywords mark commits that look like they should have been
// squashed.
var DefaultWIPKeywords = []string{"wip", "-w-", "_w_", "fixup", "squash", "review", "revue"}

// checkCommits looks at the commits about to be pushed to destination and
// asks for confirmation when there are many of them or when some look like
// work in progress. It returns false if the user refuses.
func (e *Engine) checkCommits(destination string) (bool, error) {
	commitRange := upstreamRef + "..HEAD"

	count, err := e.repo.CommitsAhead(upstreamRef, "HEAD")
	if err != nil {
		return false, err
	}

	maxCommits := e.preChecks.MaxCommits
	if maxCommits > 0 && count >= maxCommits {
		display := e.preChecks.DisplayCommits
		if display <= 0 {
			display = DefaultDisplayCommits
		}

		if count > display {
			e.out.Warning("You are about to push %d commits to %s (only %d are displayed below):", count, destination, display)
		} else {
			e.out.Warning("You are about to push these %d commits to %s:", count, destination)
		}

		lines, err := e.repo.LogOneline(commitRange, min(count, display))
		if err != nil {
			return false, err
		}
		e.out.Quote(lines)
		e.out.Println("Perhaps you have forgotten to squash them.")

		if ok, err := e.confirm.Confirm("Continue", false); err != nil || !ok {
			return false, err
		}
	}

	keywords := e.preChecks.Keywords
	if keywords == nil {
		keywords = DefaultWIPKeywords
	}

	wip, err := e.repo.GrepLog(commitRange, keywords)
	if err != nil {
		return false, err
	}
	if len(wip) > 0 {
		e.out.Warning("You are about to push commits to %s that look like squashable or work-in-progress commits:", destination)
		e.out.Quote(wip)
		e.out.Println("Perhaps you have forgotten to squash them.")

		if ok, err := e.confirm.Confirm("Continue", false); err != nil || !ok {
			return false, err
		}
	}

	return true, nil
}
