package imports

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// State is the lifecycle position of one import session.
type State string

const (
	StateIdle            State = "idle"
	StateParsing         State = "parsing"
	StatePreviewing      State = "previewing"
	StateSubmitting      State = "submitting"
	StateSucceeded       State = "succeeded"
	StatePartiallyFailed State = "partially_failed"
	StateFailed          State = "failed"
)

// Terminal reports whether the state is a settled submission result.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StatePartiallyFailed || s == StateFailed
}

var (
	// ErrInvalidTransition is returned when an operation is invoked from a
	// state that does not permit it.
	ErrInvalidTransition = errors.New("operation not allowed in current state")
	// ErrNoValidRows is returned by the create flow when filtering leaves
	// nothing to submit.
	ErrNoValidRows = errors.New("no valid employee data found")
)

// Coordinator drives one import session through parse, preview and
// submission. It is safe for concurrent use; exactly one submission can run
// at a time and the terminal outcome is retained until Dismiss.
type Coordinator struct {
	api            EmployeeAPI
	organizationID string

	mu      sync.Mutex
	state   State
	mode    Mode
	rows    []Row
	refs    ReferenceData
	outcome *Outcome
}

func NewCoordinator(api EmployeeAPI, organizationID string) *Coordinator {
	return &Coordinator{
		api:            api,
		organizationID: organizationID,
		state:          StateIdle,
	}
}

// State returns the current lifecycle position.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Rows returns the parsed preview rows. Valid from Previewing onward.
func (c *Coordinator) Rows() []Row {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rows
}

// Outcome returns the settled submission result, or nil before settlement.
func (c *Coordinator) Outcome() *Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.outcome
}

// Load parses an uploaded file and moves Idle -> Parsing -> Previewing. Parse
// errors return the session to Idle.
func (c *Coordinator) Load(ctx context.Context, mode Mode, filename string, contents []byte) error {
	if !mode.Valid() {
		return fmt.Errorf("invalid import mode %q", mode)
	}

	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return ErrInvalidTransition
	}
	c.state = StateParsing
	c.mu.Unlock()

	rows, err := ParseUpload(filename, contents)
	if err != nil {
		c.mu.Lock()
		c.state = StateIdle
		c.mu.Unlock()
		return err
	}

	refs, err := c.api.FetchReferenceData(ctx)
	if err != nil {
		c.mu.Lock()
		c.state = StateIdle
		c.mu.Unlock()
		return fmt.Errorf("fetch reference data: %w", err)
	}

	c.mu.Lock()
	c.mode = mode
	c.rows = rows
	c.refs = refs
	c.outcome = nil
	c.state = StatePreviewing
	c.mu.Unlock()
	return nil
}

// Warnings runs the advisory preview checks over the loaded rows.
func (c *Coordinator) Warnings() []RowWarning {
	c.mu.Lock()
	mode, rows, refs := c.mode, c.rows, c.refs
	c.mu.Unlock()
	return ValidateRows(mode, rows, refs)
}

// Confirm moves Previewing -> Submitting and runs the flow selected at Load.
// It blocks until the submission settles and returns the aggregate outcome.
func (c *Coordinator) Confirm(ctx context.Context) (*Outcome, error) {
	c.mu.Lock()
	if c.state != StatePreviewing {
		c.mu.Unlock()
		return nil, ErrInvalidTransition
	}
	c.state = StateSubmitting
	mode, rows, refs := c.mode, c.rows, c.refs
	c.mu.Unlock()

	var outcome *Outcome
	switch mode {
	case ModeNew:
		outcome = c.submitCreate(ctx, rows, refs)
	case ModeExisting:
		outcome = c.submitUpdate(ctx, rows, refs)
	}

	c.mu.Lock()
	c.outcome = outcome
	switch {
	case outcome.FailureCount == 0 && outcome.SuccessCount > 0:
		c.state = StateSucceeded
	case outcome.SuccessCount > 0:
		c.state = StatePartiallyFailed
	default:
		c.state = StateFailed
	}
	c.mu.Unlock()
	return outcome, nil
}

// Dismiss clears a settled session back to Idle so the coordinator can be
// reused. Only valid from a terminal state.
func (c *Coordinator) Dismiss() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.Terminal() {
		return ErrInvalidTransition
	}
	c.state = StateIdle
	c.mode = ""
	c.rows = nil
	c.refs = ReferenceData{}
	c.outcome = nil
	return nil
}

// submitCreate runs the all-or-nothing bulk create. Rows lacking a name or
// email never reach the batch; they are dropped without a failure entry.
func (c *Coordinator) submitCreate(ctx context.Context, rows []Row, refs ReferenceData) *Outcome {
	outcome := &Outcome{Flow: ModeNew}

	var valid []Row
	for _, row := range rows {
		if row.HasNameAndEmail() {
			valid = append(valid, row)
		}
	}
	if len(valid) == 0 {
		outcome.FailureMessages = append(outcome.FailureMessages, ErrNoValidRows.Error())
		return outcome
	}

	existing, err := c.api.ListEmployeeNumbers(ctx)
	if err != nil {
		outcome.FailureCount = len(valid)
		outcome.FailureMessages = append(outcome.FailureMessages, fmt.Sprintf("list employee numbers: %v", err))
		return outcome
	}
	numbers := AllocateEmployeeNumbers(len(valid), existing)

	payloads := make([]NewEmployeePayload, len(valid))
	for i, row := range valid {
		payloads[i] = MapNewEmployee(row, refs, c.organizationID, numbers[i])
	}

	result, err := c.api.BulkCreateEmployees(ctx, payloads)
	if err != nil {
		outcome.FailureCount = len(payloads)
		outcome.FailureMessages = append(outcome.FailureMessages, err.Error())
		return outcome
	}
	if result == nil {
		outcome.SuccessCount = len(payloads)
		return outcome
	}

	outcome.SuccessCount = result.CreatedCount
	for _, item := range result.Failed {
		outcome.addFailure(fmt.Sprintf("%s: %s", item.Identifier, item.Message))
	}
	return outcome
}

// submitUpdate submits one request per row concurrently. Each row settles
// into its own result slot; rows without an employee identifier fail locally
// without a network call.
func (c *Coordinator) submitUpdate(ctx context.Context, rows []Row, refs ReferenceData) *Outcome {
	outcome := &Outcome{Flow: ModeExisting}
	results := make([]error, len(rows))

	var wg sync.WaitGroup
	for i, row := range rows {
		employeeID := row.EmployeeID()
		if employeeID == "" {
			results[i] = errors.New("Employee ID missing in row")
			continue
		}
		wg.Add(1)
		go func(i int, row Row, employeeID string) {
			defer wg.Done()
			fields := MapEmployeeUpdate(row, refs)
			results[i] = c.api.UpdateEmployee(ctx, employeeID, fields)
		}(i, row, employeeID)
	}
	wg.Wait()

	for _, err := range results {
		if err == nil {
			outcome.SuccessCount++
		} else {
			outcome.addFailure(err.Error())
		}
	}
	return outcome
}
