package entity

// Company referencia opaca a una empresa (id + nombre para presentación).
// El CRUD de empresas vive fuera de este servicio; aquí solo se consulta.
type Company struct {
	ID   string
	Name string
}

// FacilityType referencia opaca a un tipo de activo.
type FacilityType struct {
	ID   string
	Name string
}

// StatusCode código de estado del catálogo maestro.
type StatusCode struct {
	Code string
	Name string
}
