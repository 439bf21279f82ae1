package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

// Caso 1: una clave no definida devuelve el valor por defecto.
func TestGetInt_SinDefinir(t *testing.T) {
	v := viper.New()
	assert.Equal(t, 5432, getInt(v, "DB_PORT", 5432))
}

// Caso 2: un string numérico se parsea (las env vars siempre llegan como string).
func TestGetInt_StringNumerico(t *testing.T) {
	v := viper.New()
	v.Set("DB_PORT", "5433")
	assert.Equal(t, 5433, getInt(v, "DB_PORT", 5432))

	v.Set("HTTP_PORT", " 9090 ")
	assert.Equal(t, 9090, getInt(v, "HTTP_PORT", 8080))
}

// Caso 3: un valor malformado cae al default, nunca a 0 silencioso.
func TestGetInt_MalformadoCaeAlDefault(t *testing.T) {
	v := viper.New()
	v.Set("BATCH_FLUSH_SIZE", "cien")
	assert.Equal(t, 100, getInt(v, "BATCH_FLUSH_SIZE", 100))
}

// Caso 4: un valor ya entero pasa directo.
func TestGetInt_Entero(t *testing.T) {
	v := viper.New()
	v.Set("BATCH_MAX_WORKERS", 8)
	assert.Equal(t, 8, getInt(v, "BATCH_MAX_WORKERS", 0))
}
