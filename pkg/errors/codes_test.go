package errors

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCode_String(t *testing.T) {
	assert.Equal(t, "RXN_003", ErrCodeInvalidTemplate.String())
}

func TestExitStatusForCode(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		expected int
	}{
		{ErrCodeInternal, 1},
		{ErrCodeBadRequest, 2},
		{ErrCodePatternError, 65},
		{ErrCodeConfigInvalid, 78},
		{ErrCodeCanceled, 130},
		{ErrorCode("UNKNOWN"), 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ExitStatusForCode(tt.code))
	}
}

func TestDefaultMessageForCode(t *testing.T) {
	assert.Equal(t, "internal error", DefaultMessageForCode(ErrCodeInternal))
	assert.Equal(t, "unknown error", DefaultMessageForCode(ErrorCode("UNKNOWN")))
}

func TestIsInputError(t *testing.T) {
	assert.True(t, IsInputError(ErrCodePatternError))
	assert.True(t, IsInputError(ErrCodeMoleculeFormatUnsupported))
	assert.False(t, IsInputError(ErrCodeAtomIndexOutOfRange))
	assert.False(t, IsInputError(ErrCodeDegenerateProbeResult))
	assert.False(t, IsInputError(ErrCodeInternal))
}

func TestModuleForCode(t *testing.T) {
	assert.Equal(t, "COMMON", ModuleForCode(ErrCodeInternal))
	assert.Equal(t, "MOL", ModuleForCode(ErrCodeMoleculeFormatUnsupported))
	assert.Equal(t, "RXN", ModuleForCode(ErrCodeAmbiguousAttachment))
	assert.Equal(t, "UNKNOWN", ModuleForCode(ErrorCode("")))
	assert.Equal(t, "UNKNOWN", ModuleForCode(CodeOK))
}

func TestErrorCodeFormat_Convention(t *testing.T) {
	re := regexp.MustCompile(`^[A-Z]+_\d{3}$`)
	for code := range ErrorCodeExitStatus {
		assert.Regexp(t, re, string(code))
	}
}

func TestErrorCodeMappings_Completeness(t *testing.T) {
	for code := range ErrorCodeExitStatus {
		_, hasMessage := ErrorCodeMessage[code]
		assert.True(t, hasMessage, "missing message for %s", code)
	}
	assert.Len(t, ErrorCodeMessage, len(ErrorCodeExitStatus))
}

//Personal.AI order the ending
