package domain

// Retry budgets for one capture pass. Readiness polling uses a fixed
// backoff; each screenshot attempt carries its own budget.
const (
	ReadinessAttempts = 5
	ShotAttempts      = 3
)

// PassPlan is what one capture pass owes a record, decided up front.
type PassPlan struct {
	NeedPhoto bool
	Shots     int
	Blur      bool
}

// PlanPass decides the workload for a pass. Debug sessions take a
// single screenshot; production passes take a randomized 1 to 3 via
// the injected roll so tests stay deterministic.
func PlanPass(needPhoto, needShots, screenshotsEnabled, blur, debug bool, roll func(n int) int) PassPlan {
	plan := PassPlan{NeedPhoto: needPhoto, Blur: blur}
	if !needShots || !screenshotsEnabled {
		return plan
	}
	if debug {
		plan.Shots = 1
		return plan
	}
	plan.Shots = 1 + roll(3)
	return plan
}

// Empty reports whether the pass has nothing to do.
func (p PassPlan) Empty() bool {
	return !p.NeedPhoto && p.Shots == 0
}
