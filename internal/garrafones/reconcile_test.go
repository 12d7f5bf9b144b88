package garrafones_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"watify-backend/internal/garrafones"
)

func TestReconciliar(t *testing.T) {
	type args struct {
		cargados        int
		recargas        int
		nuevos          int
		quebradosLlenos int
		quebradosVacios int
	}

	tests := []struct {
		name string
		args args
		want garrafones.Cuenta
	}{
		{
			name: "DiaNormalConQuebrados",
			args: args{cargados: 50, recargas: 30, nuevos: 5, quebradosLlenos: 2, quebradosVacios: 3},
			want: garrafones.Cuenta{
				Cargados:         50,
				RecargasVendidas: 30,
				NuevosVendidos:   5,
				TotalQuebrados:   5,
				QuebradosLlenos:  2,
				QuebradosVacios:  3,
				LlenosARegresar:  13,
				VaciosARegresar:  27,
				TotalARegresar:   40,
			},
		},
		{
			name: "VentasExcedenLaCarga",
			args: args{cargados: 10, recargas: 15},
			want: garrafones.Cuenta{
				Cargados:         10,
				RecargasVendidas: 15,
				LlenosARegresar:  0,
				VaciosARegresar:  15,
				TotalARegresar:   15,
			},
		},
		{
			name: "SinVentas",
			args: args{cargados: 40},
			want: garrafones.Cuenta{
				Cargados:        40,
				LlenosARegresar: 40,
				TotalARegresar:  40,
			},
		},
		{
			name: "TodoVendidoEnRecargas",
			args: args{cargados: 20, recargas: 20},
			want: garrafones.Cuenta{
				Cargados:         20,
				RecargasVendidas: 20,
				LlenosARegresar:  0,
				VaciosARegresar:  20,
				TotalARegresar:   20,
			},
		},
		{
			name: "QuebradosVaciosExcedenRecargas",
			args: args{cargados: 30, recargas: 2, quebradosVacios: 5},
			want: garrafones.Cuenta{
				Cargados:         30,
				RecargasVendidas: 2,
				TotalQuebrados:   5,
				QuebradosVacios:  5,
				LlenosARegresar:  28,
				VaciosARegresar:  0,
				TotalARegresar:   28,
			},
		},
		{
			name: "NuevosNoGeneranVacios",
			args: args{cargados: 25, nuevos: 10},
			want: garrafones.Cuenta{
				Cargados:        25,
				NuevosVendidos:  10,
				LlenosARegresar: 15,
				TotalARegresar:  15,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := garrafones.Reconciliar(tt.args.cargados, tt.args.recargas, tt.args.nuevos,
				tt.args.quebradosLlenos, tt.args.quebradosVacios)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReconciliarTotalesConsistentes(t *testing.T) {
	// El total a regresar siempre es la suma de llenos y vacíos, y ninguno
	// puede ser negativo, ni con capturas absurdas.
	casos := [][5]int{
		{0, 0, 0, 0, 0},
		{50, 30, 5, 2, 3},
		{10, 15, 0, 0, 0},
		{5, 100, 100, 100, 100},
		{1, 0, 0, 50, 0},
	}
	for _, c := range casos {
		got := garrafones.Reconciliar(c[0], c[1], c[2], c[3], c[4])
		assert.GreaterOrEqual(t, got.LlenosARegresar, 0)
		assert.GreaterOrEqual(t, got.VaciosARegresar, 0)
		assert.Equal(t, got.LlenosARegresar+got.VaciosARegresar, got.TotalARegresar)
		assert.Equal(t, got.QuebradosLlenos+got.QuebradosVacios, got.TotalQuebrados)
	}
}
