package chain

import (
	"context"
	"sync"
)

// Not inverts the result of a predicate
func Not(pred Predicate) Predicate {
	return func(data Data) bool {
		return !pred(data)
	}
}

// If condition for choosing
func If(pred Predicate) PredicateStep {
	return &BranchingStep{matches: pred}
}

// PredicateStep is a partial step that exposes the Then branch in an if condition step
type PredicateStep interface {
	Then(Step) *BranchingStep
}

// BranchingStep for forking based on a condition.
// if the predicate evaluates to true then the right side will be executed
// if the predicate evaluates to false then the left side will be executed
type BranchingStep struct {
	matches  Predicate
	right    Step
	left     Step
	selected Step
	m        sync.Mutex
}

// Then step to be executed when the predicate evaluates to true
func (b *BranchingStep) Then(step Step) *BranchingStep {
	b.right = step
	return b
}

// Else step to be executed when the predicate evaluates to false
func (b *BranchingStep) Else(step Step) *BranchingStep {
	b.left = step
	return b
}

// Name for this step, composed from the branch names
func (b *BranchingStep) Name() string {
	if b.right == nil {
		// people need to have purposely given a nil to the Then method
		// to even get here. The syntax is built up to ensure compilation
		// fails for an incomplete predicate step
		panic("a branching step needs at least a then branch defined")
	}
	if b.left == nil {
		return "~" + b.right.Name()
	}
	return b.right.Name() + "|" + b.left.Name()
}

// Run evaluates the predicate against the running context and executes
// the selected branch; the skipped branch is announced on the bus
func (b *BranchingStep) Run(ctx context.Context, data Data, next Next) error {
	b.m.Lock()
	if b.matches(data) {
		b.selected = b.right
		if b.left != nil {
			PublishRunEvent(ctx, b.left.Name(), StateSkipped, nil)
		}
	} else {
		b.selected = b.left
		PublishRunEvent(ctx, b.right.Name(), StateSkipped, nil)
	}
	selected := b.selected
	b.m.Unlock()

	if selected == nil {
		next(nil, nil)
		return nil
	}

	data[StepNameKey] = selected.Name()
	PublishRunEvent(ctx, selected.Name(), StateProcessing, nil)
	update, failure := runStep(ctx, selected, data)
	if failure != nil {
		if IsCanceled(failure) {
			PublishRunEvent(ctx, selected.Name(), StateCanceled, nil)
		} else {
			PublishRunEvent(ctx, selected.Name(), StateFailed, failure)
		}
		next(failure, nil)
		return nil
	}
	PublishRunEvent(ctx, selected.Name(), StateSuccess, nil)
	next(nil, update)
	return nil
}
