package garrafones

// Cuenta es el estado de garrafones de una ruta: lo cargado, lo vendido por
// tipo, lo quebrado, y lo que el chofer debe regresar físicamente.
type Cuenta struct {
	Cargados         int `json:"cargados"`
	RecargasVendidas int `json:"recargas_vendidas"`
	NuevosVendidos   int `json:"nuevos_vendidos"`
	TotalQuebrados   int `json:"total_quebrados"`
	QuebradosLlenos  int `json:"quebrados_llenos"`
	QuebradosVacios  int `json:"quebrados_vacios"`
	LlenosARegresar  int `json:"llenos_a_regresar"`
	VaciosARegresar  int `json:"vacios_a_regresar"`
	TotalARegresar   int `json:"total_a_regresar"`
}

// Reconciliar calcula cuántos garrafones llenos y vacíos debe regresar el
// chofer. Una recarga entrega un lleno y recoge un vacío: no cambia la base
// a regresar, pero convierte una unidad de "lleno pendiente" a "vacío por
// regresar". Un nuevo sale de la flotilla y no regresa nada. Un quebrado
// lleno ya no se puede regresar lleno; un quebrado vacío ya no se regresa
// vacío. Los clamp en cero absorben capturas inconsistentes (ventas que
// exceden la carga registrada): no se puede regresar un número negativo de
// garrafones.
func Reconciliar(cargados, recargas, nuevos, quebradosLlenos, quebradosVacios int) Cuenta {
	llenos := cargados - recargas - nuevos - quebradosLlenos
	if llenos < 0 {
		llenos = 0
	}
	vacios := recargas - quebradosVacios
	if vacios < 0 {
		vacios = 0
	}

	return Cuenta{
		Cargados:         cargados,
		RecargasVendidas: recargas,
		NuevosVendidos:   nuevos,
		TotalQuebrados:   quebradosLlenos + quebradosVacios,
		QuebradosLlenos:  quebradosLlenos,
		QuebradosVacios:  quebradosVacios,
		LlenosARegresar:  llenos,
		VaciosARegresar:  vacios,
		TotalARegresar:   llenos + vacios,
	}
}
