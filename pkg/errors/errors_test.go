package errors_test

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/SymRxn/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// New / Wrap
// ─────────────────────────────────────────────────────────────────────────────

func TestNew_FieldsAreSetCorrectly(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		code    errors.ErrorCode
		message string
	}{
		{"internal error", errors.CodeInternal, "unexpected failure"},
		{"pattern error", errors.ErrCodePatternError, "missing >>"},
		{"invalid param", errors.CodeInvalidParam, "SMILES must not be empty"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ae := errors.New(tc.code, tc.message)

			require.NotNil(t, ae)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, tc.message, ae.Message)
			assert.Empty(t, ae.Detail)
			assert.Nil(t, ae.Cause)
		})
	}
}

func TestNewf_FormatsMessage(t *testing.T) {
	t.Parallel()

	ae := errors.Newf(errors.ErrCodeLinkerInvalid, "found %d dummy atoms", 3)
	assert.Equal(t, "found 3 dummy atoms", ae.Message)
}

func TestWrap_NilReturnsNil(t *testing.T) {
	t.Parallel()

	assert.Nil(t, errors.Wrap(nil, errors.CodeInternal, "ignored"))
}

func TestWrap_UnknownCodeKeepsInner(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.ErrCodeAmbiguousAttachment, "two hydrogens")
	outer := errors.Wrap(inner, errors.CodeUnknown, "bridge synthesis")

	assert.Equal(t, errors.ErrCodeAmbiguousAttachment, outer.Code)
	assert.Equal(t, inner, stderrors.Unwrap(outer))
}

func TestWrap_MultiLevel(t *testing.T) {
	t.Parallel()

	root := stderrors.New("unexpected ')'")
	level1 := errors.Wrap(root, errors.ErrCodePatternError, "bad pattern")
	level2 := errors.Wrap(level1, errors.CodeInternal, "template build failed")

	assert.Equal(t, level1, stderrors.Unwrap(level2))
	assert.Equal(t, root, stderrors.Unwrap(level1))
}

// ─────────────────────────────────────────────────────────────────────────────
// Error()
// ─────────────────────────────────────────────────────────────────────────────

func TestError_FormatWithoutDetail(t *testing.T) {
	t.Parallel()

	s := errors.New(errors.ErrCodeInvalidTemplate, "template is empty").Error()
	assert.Equal(t, "[RXN_003] template is empty", s)
}

func TestError_FormatWithDetail(t *testing.T) {
	t.Parallel()

	ae := errors.New(errors.ErrCodeParseError, "invalid SMILES").
		WithDetail("input=C1CC1[invalid]")
	s := ae.Error()

	assert.Contains(t, s, "RXN_001")
	assert.Contains(t, s, "invalid SMILES")
	assert.Contains(t, s, "input=C1CC1[invalid]")
}

func TestError_EmptyMessageDoesNotPanic(t *testing.T) {
	t.Parallel()

	ae := errors.New(errors.CodeOK, "")
	assert.NotPanics(t, func() { _ = ae.Error() })
}

// ─────────────────────────────────────────────────────────────────────────────
// Fluent builders
// ─────────────────────────────────────────────────────────────────────────────

func TestWithDetail_SetsDetailOnCopy(t *testing.T) {
	t.Parallel()

	original := errors.New(errors.CodeNotFound, "file missing")
	detailed := original.WithDetail("path=a.mol")

	assert.Empty(t, original.Detail, "WithDetail must not mutate the original")
	assert.Equal(t, "path=a.mol", detailed.Detail)
	assert.Equal(t, original.Code, detailed.Code)
}

func TestWithDetail_NilReceiverReturnsNil(t *testing.T) {
	t.Parallel()

	var ae *errors.AppError
	assert.Nil(t, ae.WithDetail("x"))
	assert.Nil(t, ae.WithCause(stderrors.New("x")))
}

func TestWithCause_DoesNotMutateOriginal(t *testing.T) {
	t.Parallel()

	original := errors.New(errors.CodeInternal, "failure")
	cause := stderrors.New("cause")
	withCause := original.WithCause(cause)

	assert.Nil(t, original.Cause)
	assert.Equal(t, cause, withCause.Cause)
	assert.Equal(t, cause, stderrors.Unwrap(withCause))
}

// ─────────────────────────────────────────────────────────────────────────────
// Chain inspection
// ─────────────────────────────────────────────────────────────────────────────

func TestIsCode_NestedChain(t *testing.T) {
	t.Parallel()

	root := errors.New(errors.ErrCodeFragmentationFailed, "bond out of range")
	wrapped := errors.Wrap(root, errors.CodeInternal, "synthesis failed")

	assert.True(t, errors.IsCode(wrapped, errors.ErrCodeFragmentationFailed))
	assert.True(t, errors.IsCode(wrapped, errors.CodeInternal))
	assert.False(t, errors.IsCode(wrapped, errors.ErrCodePatternError))
}

func TestIsCode_NilAndStdlib(t *testing.T) {
	t.Parallel()

	assert.False(t, errors.IsCode(nil, errors.CodeInternal))
	assert.False(t, errors.IsCode(stderrors.New("plain"), errors.CodeInternal))
}

func TestIsCode_ThroughFmtWrap(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.ErrCodeParseError, "round trip")
	err := fmt.Errorf("executor: %w", inner)
	assert.True(t, errors.IsCode(err, errors.ErrCodeParseError))
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	assert.True(t, errors.IsNotFound(errors.NotFound("x.mol")))
	assert.True(t, errors.IsNotFound(fmt.Errorf("load: %w", errors.NotFound("x.mol"))))
	assert.False(t, errors.IsNotFound(errors.Internal("boom")))
}

func TestGetCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, errors.CodeOK, errors.GetCode(nil))
	assert.Equal(t, errors.CodeUnknown, errors.GetCode(stderrors.New("x")))
	assert.Equal(t, errors.CodeUnknown, errors.GetCode(fmt.Errorf("w: %w", stderrors.New("x"))))

	inner := errors.New(errors.ErrCodeLinkerInvalid, "no dummies")
	outer := errors.Wrap(inner, errors.CodeInternal, "config")
	assert.Equal(t, errors.CodeInternal, errors.GetCode(outer))
}

// ─────────────────────────────────────────────────────────────────────────────
// Domain factories
// ─────────────────────────────────────────────────────────────────────────────

func TestDomainFactories_ReturnCorrectCode(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  *errors.AppError
		code errors.ErrorCode
	}{
		{"NotFound", errors.NotFound("x"), errors.CodeNotFound},
		{"InvalidParam", errors.InvalidParam("x"), errors.CodeInvalidParam},
		{"Internal", errors.Internal("x"), errors.CodeInternal},
		{"ParseError", errors.ParseError("c1cc", nil), errors.ErrCodeParseError},
		{"PatternError", errors.PatternError(">>", "empty reactants"), errors.ErrCodePatternError},
		{"InvalidTemplate", errors.InvalidTemplate("zero value"), errors.ErrCodeInvalidTemplate},
		{"AmbiguousAttachment", errors.AmbiguousAttachment(3, 2), errors.ErrCodeAmbiguousAttachment},
		{"DegenerateProbeResult", errors.DegenerateProbeResult("p", 0), errors.ErrCodeDegenerateProbeResult},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.NotNil(t, tc.err)
			assert.Equal(t, tc.code, tc.err.Code)
		})
	}
}

func TestDomainFactories_Detail(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "atom=4 hydrogens=0", errors.AmbiguousAttachment(4, 0).Detail)
	assert.True(t, strings.HasPrefix(errors.PatternError("C>>", "x").Detail, "pattern="))
	assert.Contains(t, errors.DegenerateProbeResult("p", 2).Detail, "products=2")

	cause := stderrors.New("unclosed ring")
	pe := errors.ParseError("C1CC", cause)
	assert.ErrorIs(t, pe, cause)
}

func TestStdlib_ErrorsAs_DeepChain(t *testing.T) {
	t.Parallel()

	root := errors.New(errors.ErrCodePatternError, "bad")
	err := fmt.Errorf("l2: %w", fmt.Errorf("l1: %w", root))

	var ae *errors.AppError
	require.True(t, stderrors.As(err, &ae))
	assert.Equal(t, errors.ErrCodePatternError, ae.Code)
}

//Personal.AI order the ending
