package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/taskhub/taskhub-api/internal/domain"
)

// TaskQuery composes filter predicates over the task collection into a
// single executable query. A query is an immutable value: every predicate
// method returns a refined copy, leaving the receiver untouched, so partial
// queries can be shared and extended freely.
//
// Composition is an intersection: a task is in the result set exactly when
// it satisfies every applied predicate. Order of application does not change
// the result, with one structural exception: the owner scope set by ForUser
// is held separately from ordinary predicates and is always evaluated first.
// Soft-deleted rows are excluded unless IncludeTrashed is applied.
//
// Two evaluators share these semantics: Matches (the in-memory reference
// implementation, used by fakes and tests) and SQL (the postgres
// compilation). Calendar-day comparisons use UTC as the reference timezone;
// the caller supplies the reference instant so results are reproducible.
type TaskQuery struct {
	err     error
	owner   *uuid.UUID
	trashed bool
	conds   []condition
}

// NewTaskQuery returns the unfiltered query: all non-deleted tasks.
func NewTaskQuery() TaskQuery {
	return TaskQuery{}
}

// condition is a single filter predicate. Implementations must keep matches
// and sql in agreement.
type condition interface {
	matches(t *domain.Task, ref time.Time) bool
	sql(ref time.Time, args *[]any) string
}

// with returns a copy of the query with one more condition appended.
// The conditions slice is cloned so refined copies never share backing
// storage with the receiver.
func (q TaskQuery) with(c condition) TaskQuery {
	conds := make([]condition, len(q.conds), len(q.conds)+1)
	copy(conds, q.conds)
	q.conds = append(conds, c)
	return q
}

// Completed filters to tasks with is_completed set.
func (q TaskQuery) Completed() TaskQuery {
	return q.with(completedCond{value: true})
}

// NotCompleted filters to tasks with is_completed unset.
func (q TaskQuery) NotCompleted() TaskQuery {
	return q.with(completedCond{value: false})
}

// WithPriority filters to tasks with exactly the given priority.
// An invalid priority poisons the query; the error surfaces from Err
// and from every evaluator.
func (q TaskQuery) WithPriority(p domain.Priority) TaskQuery {
	if !p.IsValid() {
		q.err = fmt.Errorf("%w: %w", ErrInvalidQuery, domain.ErrInvalidPriority)
		return q
	}
	return q.with(priorityCond{priority: p})
}

// DueOn filters to tasks whose due date falls on the same calendar day as
// date, compared in UTC. Tasks without a due date never match.
func (q TaskQuery) DueOn(date time.Time) TaskQuery {
	return q.with(dueOnCond{day: dayStart(date)})
}

// Overdue filters to incomplete tasks with a due date before the start of
// the reference day.
func (q TaskQuery) Overdue() TaskQuery {
	return q.with(overdueCond{})
}

// Upcoming filters to incomplete tasks due between the reference day and
// days calendar days from it, inclusive on both ends. Upcoming(0) yields
// only tasks due on the reference day. A negative window poisons the query.
func (q TaskQuery) Upcoming(days int) TaskQuery {
	if days < 0 {
		q.err = fmt.Errorf("%w: upcoming window must be non-negative, got %d", ErrInvalidQuery, days)
		return q
	}
	return q.with(upcomingCond{days: days})
}

// ForUser scopes the query to tasks owned by the given user. The scope is
// structural: it is not an ordinary condition, it always applies first, and
// applying it again replaces the previous owner rather than intersecting.
func (q TaskQuery) ForUser(ownerID uuid.UUID) TaskQuery {
	q.owner = &ownerID
	return q
}

// IncludeTrashed makes the query return soft-deleted tasks alongside live
// ones. The default mode excludes them.
func (q TaskQuery) IncludeTrashed() TaskQuery {
	q.trashed = true
	return q
}

// Err returns the first composition error, if any. A query with a non-nil
// Err must not be executed; evaluators return it unchanged.
func (q TaskQuery) Err() error {
	return q.err
}

// Owner returns the owner scope set by ForUser, or uuid.Nil and false when
// the query is unscoped.
func (q TaskQuery) Owner() (uuid.UUID, bool) {
	if q.owner == nil {
		return uuid.Nil, false
	}
	return *q.owner, true
}

// Matches reports whether the task satisfies every predicate of the query,
// evaluated against the reference instant. This is the reference semantics
// the SQL compilation must agree with.
func (q TaskQuery) Matches(t *domain.Task, ref time.Time) bool {
	if q.err != nil {
		return false
	}

	if q.owner != nil && t.OwnerID != *q.owner {
		return false
	}

	if !q.trashed && t.IsDeleted() {
		return false
	}

	for _, c := range q.conds {
		if !c.matches(t, ref) {
			return false
		}
	}

	return true
}

// SQL compiles the query into a postgres WHERE clause with positional
// arguments, evaluated against the reference instant. The owner scope
// compiles first, then the soft-delete visibility clause, then each
// predicate in application order.
func (q TaskQuery) SQL(ref time.Time) (string, []any, error) {
	if q.err != nil {
		return "", nil, q.err
	}

	var clauses []string
	var args []any

	if q.owner != nil {
		clauses = append(clauses, "owner_id = "+nextArg(&args, *q.owner))
	}

	if !q.trashed {
		clauses = append(clauses, "deleted_at IS NULL")
	}

	for _, c := range q.conds {
		clauses = append(clauses, c.sql(ref, &args))
	}

	if len(clauses) == 0 {
		return "TRUE", nil, nil
	}

	return strings.Join(clauses, " AND "), args, nil
}

// nextArg appends v to args and returns its positional placeholder.
func nextArg(args *[]any, v any) string {
	*args = append(*args, v)
	return fmt.Sprintf("$%d", len(*args))
}

// dayStart truncates an instant to the start of its UTC calendar day.
func dayStart(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

type completedCond struct {
	value bool
}

func (c completedCond) matches(t *domain.Task, _ time.Time) bool {
	return t.IsCompleted == c.value
}

func (c completedCond) sql(_ time.Time, args *[]any) string {
	return "is_completed = " + nextArg(args, c.value)
}

type priorityCond struct {
	priority domain.Priority
}

func (c priorityCond) matches(t *domain.Task, _ time.Time) bool {
	return t.Priority == c.priority
}

func (c priorityCond) sql(_ time.Time, args *[]any) string {
	return "priority = " + nextArg(args, string(c.priority))
}

type dueOnCond struct {
	day time.Time
}

func (c dueOnCond) matches(t *domain.Task, _ time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	due := t.DueDate.UTC()
	return !due.Before(c.day) && due.Before(c.day.AddDate(0, 0, 1))
}

func (c dueOnCond) sql(_ time.Time, args *[]any) string {
	from := nextArg(args, c.day)
	to := nextArg(args, c.day.AddDate(0, 0, 1))
	return fmt.Sprintf("(due_date >= %s AND due_date < %s)", from, to)
}

type overdueCond struct{}

func (overdueCond) matches(t *domain.Task, ref time.Time) bool {
	if t.IsCompleted || t.DueDate == nil {
		return false
	}
	return t.DueDate.UTC().Before(dayStart(ref))
}

func (overdueCond) sql(ref time.Time, args *[]any) string {
	today := nextArg(args, dayStart(ref))
	return fmt.Sprintf("(is_completed = FALSE AND due_date IS NOT NULL AND due_date < %s)", today)
}

type upcomingCond struct {
	days int
}

func (c upcomingCond) matches(t *domain.Task, ref time.Time) bool {
	if t.IsCompleted || t.DueDate == nil {
		return false
	}
	due := t.DueDate.UTC()
	from := dayStart(ref)
	return !due.Before(from) && due.Before(from.AddDate(0, 0, c.days+1))
}

func (c upcomingCond) sql(ref time.Time, args *[]any) string {
	start := dayStart(ref)
	from := nextArg(args, start)
	to := nextArg(args, start.AddDate(0, 0, c.days+1))
	return fmt.Sprintf(
		"(is_completed = FALSE AND due_date IS NOT NULL AND due_date >= %s AND due_date < %s)",
		from,
		to,
	)
}
