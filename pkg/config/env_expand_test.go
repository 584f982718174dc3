package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandEnv(t *testing.T) {
	tests := []struct {
		name        string
		value       string
		setupEnv    map[string]string
		expected    string
		expectError bool
		errorMsg    string
	}{
		{
			name:     "simple value no expansion",
			value:    "simple-value",
			expected: "simple-value",
		},
		{
			name:     "required var set",
			value:    "${KANBAN_TEST_VAR}",
			setupEnv: map[string]string{"KANBAN_TEST_VAR": "test-value"},
			expected: "test-value",
		},
		{
			name:        "required var not set",
			value:       "${KANBAN_TEST_VAR}",
			expectError: true,
			errorMsg:    "required environment variable(s) not set: [KANBAN_TEST_VAR]",
		},
		{
			name:        "required var empty",
			value:       "${KANBAN_TEST_VAR}",
			setupEnv:    map[string]string{"KANBAN_TEST_VAR": ""},
			expectError: true,
			errorMsg:    "required environment variable(s) not set",
		},
		{
			name:     "default var set",
			value:    "${KANBAN_TEST_VAR:-default-value}",
			setupEnv: map[string]string{"KANBAN_TEST_VAR": "actual-value"},
			expected: "actual-value",
		},
		{
			name:     "default var not set",
			value:    "${KANBAN_TEST_VAR:-default-value}",
			expected: "default-value",
		},
		{
			name:     "empty default",
			value:    "x${KANBAN_TEST_VAR:-}y",
			expected: "xy",
		},
		{
			name:     "embedded in url",
			value:    "https://${KANBAN_TEST_HOST}:${KANBAN_TEST_PORT:-443}/api",
			setupEnv: map[string]string{"KANBAN_TEST_HOST": "boards.example.com"},
			expected: "https://boards.example.com:443/api",
		},
		{
			name:        "reports every missing variable",
			value:       "${KANBAN_TEST_A}/${KANBAN_TEST_B}",
			expectError: true,
			errorMsg:    "[KANBAN_TEST_A KANBAN_TEST_B]",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for _, name := range []string{"KANBAN_TEST_VAR", "KANBAN_TEST_HOST", "KANBAN_TEST_PORT", "KANBAN_TEST_A", "KANBAN_TEST_B"} {
				t.Setenv(name, "")
			}
			for k, v := range tc.setupEnv {
				t.Setenv(k, v)
			}

			got, err := ExpandEnv(tc.value)
			if tc.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.errorMsg)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}
