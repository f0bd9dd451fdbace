package workflow

import (
	"strings"

	"strot/pkg/types"
)

// NormalizeSkill is applied to skills on write and on comparison.
func NormalizeSkill(skill string) string {
	return strings.ToLower(strings.TrimSpace(skill))
}

// MatchWorkers returns the workers that can be put forward for job: same
// skill and currently available. Input order is preserved.
func MatchWorkers(job *types.Job, workers []*types.WorkerProfile) []*types.WorkerProfile {
	out := make([]*types.WorkerProfile, 0, len(workers))
	if job == nil {
		return out
	}

	want := NormalizeSkill(job.RequiredSkill)
	for _, w := range workers {
		if w == nil || w.Status != types.WorkerStatusAvailable {
			continue
		}
		if NormalizeSkill(w.Skill) != want {
			continue
		}
		out = append(out, w)
	}

	return out
}

// Matches reports whether a single worker qualifies for job.
func Matches(job *types.Job, worker *types.WorkerProfile) bool {
	return len(MatchWorkers(job, []*types.WorkerProfile{worker})) == 1
}
