package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsActiveRouteConflict(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "ViolacionDelIndiceDeRutaActiva",
			err:  &pgconn.PgError{Code: "23505", ConstraintName: IdxOneActiveRoute},
			want: true,
		},
		{
			name: "EnvueltoConWrap",
			err:  fmt.Errorf("creando ruta: %w", &pgconn.PgError{Code: "23505", ConstraintName: IdxOneActiveRoute}),
			want: true,
		},
		{
			name: "OtraRestriccionUnica",
			err:  &pgconn.PgError{Code: "23505", ConstraintName: "idx_confirmation_day"},
			want: false,
		},
		{
			name: "OtroCodigo",
			err:  &pgconn.PgError{Code: "40001", ConstraintName: IdxOneActiveRoute},
			want: false,
		},
		{
			name: "ErrorCualquiera",
			err:  errors.New("se cayó"),
			want: false,
		},
		{
			name: "Nil",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsActiveRouteConflict(tt.err))
		})
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "Serializacion", err: &pgconn.PgError{Code: "40001"}, want: true},
		{name: "Deadlock", err: &pgconn.PgError{Code: "40P01"}, want: true},
		{name: "ConexionCaida", err: &pgconn.PgError{Code: "08006"}, want: true},
		{name: "ViolacionUnica", err: &pgconn.PgError{Code: "23505"}, want: false},
		{name: "Nil", err: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}
