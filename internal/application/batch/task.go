package batch

import "context"

// unit es la unidad mínima de trabajo asíncrono del orquestador: un nombre y
// una función que devuelve (claves procesadas, error). Las dos estrategias se
// expresan con esta misma abstracción tipada en lugar de ramificar por el tipo
// de tarea en runtime.
type unit struct {
	name string
	run  func(ctx context.Context) (int, error)
}

// unitResult resultado de una unidad despachada.
type unitResult struct {
	name      string
	processed int
	err       error
}

// dispatch lanza todas las unidades sobre un pool acotado de workers y
// devuelve el canal de resultados (con búfer para que ninguna unidad quede
// bloqueada si el join abandona por timeout).
func dispatch(ctx context.Context, units []unit, maxWorkers int) <-chan unitResult {
	results := make(chan unitResult, len(units))
	sem := make(chan struct{}, maxWorkers)
	for _, u := range units {
		u := u
		go func() {
			sem <- struct{}{}
			defer func() { <-sem }()
			processed, err := u.run(ctx)
			results <- unitResult{name: u.name, processed: processed, err: err}
		}()
	}
	return results
}
