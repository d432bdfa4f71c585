package classify

// DefaultTable returns the built-in keyword table.
func DefaultTable() Table {
	return Table{
		Debt: []string{
			"Deuda",
			"Préstamo",
			"Prestamo",
			"Crédito",
			"Credito",
			"Tarjeta",
			"Financiación",
			"Financiacion",
			"Cuota",
		},
		Needs: []string{
			"Vivienda",
			"Alquiler",
			"Hipoteca",
			"Alimentación",
			"Supermercado",
			"Transporte",
			"Combustible",
			"Seguro",
			"Salud",
			"Medicamentos",
			"Servicios",
			"Electricidad",
			"Agua",
			"Gas",
			"Internet",
			"Teléfono",
			"Educación",
			"Guarderia",
			"Guardería",
			"Subscripcion",
			"Suscripción",
			"Suscripcion",
			"Impuestos",
		},
		Wants: []string{
			"Ocio",
			"Entretenimiento",
			"Restaurantes",
			"Comida fuera",
			"Viajes",
			"Ropa",
			"Tecnología",
			"Hobbies",
			"Gimnasio",
			"Belleza",
			"Mascotas",
			"Regalos",
			"Streaming",
			"Netflix",
			"Spotify",
		},
		Savings: []string{
			"Ahorro",
			"Inversión",
			"Fondo de emergencia",
			"Pensión",
			"Criptomonedas",
		},
	}
}
