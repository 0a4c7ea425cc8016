package account

// Plan is the subscription tier driving quota allowances.
type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
)

// Request types billed against a plan's monthly allowance. Only fast
// requests are charged by the current dispatch policy; the slow counter
// exists so the usage model matches the billing schema.
type RequestType string

const (
	RequestFast RequestType = "fast"
	RequestSlow RequestType = "slow"
)

// User identifies the caller for quota accounting. Authentication itself
// is an external collaborator; the identity arrives on the request.
type User struct {
	ID       string `json:"id"`
	FullName string `json:"fullName,omitempty"`
	Plan     Plan   `json:"plan"`
}

// Unlimited marks an allowance with no ceiling.
const Unlimited = -1

// Allowance returns the monthly ceiling for a request type under the
// user's plan. Free users get no slow requests at all.
func (p Plan) Allowance(rt RequestType) int {
	switch p {
	case PlanPro:
		if rt == RequestFast {
			return 250
		}
		return Unlimited
	default:
		if rt == RequestFast {
			return 50
		}
		return 0
	}
}
