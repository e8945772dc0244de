package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAfterCommit_OutsideTransactionRunsNow(t *testing.T) {
	ran := false
	AfterCommit(context.Background(), func(context.Context) { ran = true })
	assert.True(t, ran)
}

func TestWithCommitHooks_RunsInOrderOnce(t *testing.T) {
	var got []int
	ctx, run := WithCommitHooks(context.Background())
	AfterCommit(ctx, func(context.Context) { got = append(got, 1) })
	AfterCommit(ctx, func(context.Context) { got = append(got, 2) })
	assert.Empty(t, got)

	run()
	run()
	assert.Equal(t, []int{1, 2}, got)
}

func TestWithCommitHooks_NestedDefersToOuter(t *testing.T) {
	var got []string
	outer, runOuter := WithCommitHooks(context.Background())
	inner, runInner := WithCommitHooks(outer)
	AfterCommit(inner, func(context.Context) { got = append(got, "inner") })

	runInner()
	assert.Empty(t, got)
	runOuter()
	assert.Equal(t, []string{"inner"}, got)
}

func TestWithCommitHooks_SurvivesCancel(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	ctx, run := WithCommitHooks(parent)
	var hookErr error
	AfterCommit(ctx, func(ctx context.Context) { hookErr = ctx.Err() })
	cancel()
	run()
	assert.NoError(t, hookErr)
}
