package contract

import "fmt"

// transitions は許可された状態遷移の一覧です。記載の無い組み合わせはすべて不正です。
var transitions = map[Status]map[Status]bool{
	StatusRequested: {
		StatusApproved:  true,
		StatusRejected:  true,
		StatusCancelled: true,
		StatusExpired:   true,
	},
	StatusApproved: {
		StatusTerminationRequested: true,
		StatusTerminated:           true,
	},
	StatusTerminationRequested: {
		StatusApproved:   true,
		StatusTerminated: true,
	},
}

// AllStatuses は定義済みの全状態です。
var AllStatuses = []Status{
	StatusRequested,
	StatusApproved,
	StatusRejected,
	StatusCancelled,
	StatusTerminationRequested,
	StatusTerminated,
	StatusExpired,
}

// TransitionError は不正な遷移の from/to を保持します。errors.Is(err, ErrInvalidTransition) が成立します。
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("contract: invalid transition %s -> %s", e.From, e.To)
}

// Is は ErrInvalidTransition との比較を可能にします。
func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// CanTransition は from から to への遷移が許可されているかを返します。
func CanTransition(from, to Status) bool {
	return transitions[from][to]
}

// Transition は契約の状態を to に変更します。不正な遷移の場合は契約を変更せずにエラーを返します。
func Transition(c *Contract, to Status) error {
	if !CanTransition(c.Status, to) {
		return &TransitionError{From: c.Status, To: to}
	}
	c.Status = to
	return nil
}

// ParseStatus は文字列を Status に変換します。
func ParseStatus(v string) (Status, error) {
	for _, known := range AllStatuses {
		if Status(v) == known {
			return known, nil
		}
	}
	return "", fmt.Errorf("contract: unknown status %q", v)
}
