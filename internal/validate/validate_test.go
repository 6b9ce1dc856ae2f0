package validate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAdminLogin_Table(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		identifier string
		password   string
		want       string
		wantErr    error
	}{
		{name: "ok", identifier: "Admin@Example.com", password: "secret", want: "admin@example.com"},
		{name: "trims_spaces", identifier: "  user@e.com ", password: "x", want: "user@e.com"},
		{name: "empty_identifier", identifier: "", password: "x", wantErr: ErrInvalidEmail},
		{name: "not_an_email", identifier: "just-text", password: "x", wantErr: ErrInvalidEmail},
		{name: "empty_password", identifier: "user@e.com", password: "", wantErr: ErrEmptyPassword},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := AdminLogin(tt.identifier, tt.password)
			if tt.wantErr != nil {
				require.Error(t, err)
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestParticipantPhone_Table(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "plus62", raw: "+62 812-3456-789", want: "+628123456789"},
		{name: "bare_62", raw: "628123456789", want: "+628123456789"},
		{name: "local_zero", raw: "08123456789", want: "+628123456789"},
		{name: "parens_and_spaces", raw: "(0812) 345 6789", want: "+628123456789"},
		{name: "letters", raw: "0812abc", wantErr: true},
		{name: "too_short", raw: "0812345", wantErr: true},
		{name: "too_long", raw: "0812345678901234", wantErr: true},
		{name: "no_known_prefix", raw: "78123456789", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParticipantPhone(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				require.ErrorIs(t, err, ErrInvalidPhone)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestSessionSchedule(t *testing.T) {
	t.Parallel()

	require.NoError(t, SessionSchedule("Batch A", "2026-05-01T09:00:00Z", "2026-05-01T11:00:00Z"))

	err := SessionSchedule("", "2026-05-01T09:00:00Z", "2026-05-01T11:00:00Z")
	require.ErrorIs(t, err, ErrEmptySessionName)

	err = SessionSchedule("Batch A", "bad", "2026-05-01T11:00:00Z")
	require.ErrorIs(t, err, ErrInvalidSchedule)

	// Конец равен началу — невалидно (строго позже).
	err = SessionSchedule("Batch A", "2026-05-01T09:00:00Z", "2026-05-01T09:00:00Z")
	require.ErrorIs(t, err, ErrInvalidSchedule)

	err = SessionSchedule("Batch A", "2026-05-01T11:00:00Z", "2026-05-01T09:00:00Z")
	require.ErrorIs(t, err, ErrInvalidSchedule)
}
