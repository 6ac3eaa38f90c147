package service

import (
	"encoding/json"
	"strings"
)

// overallPriorityKeys define el orden de búsqueda del puntaje compuesto.
var overallPriorityKeys = [...]string{"overall", "average", "score", "total"}

// metaScoreKeys nunca se tratan como nombres de dimensión. Es un set fijo
// a propósito, para que la normalización sea auditable.
var metaScoreKeys = map[string]struct{}{
	"overall": {},
	"average": {},
	"score":   {},
	"total":   {},
	"grade":   {},
	"tier":    {},
}

// ScoreKind discrimina las tres formas posibles de un payload de puntaje.
type ScoreKind int

const (
	ScoreUnparsed ScoreKind = iota
	ScoreScalar
	ScoreComposite
)

// NormalizedScore es la vista canónica de un payload flexible:
// Scalar (un número pelado), Composite (overall opcional + dimensiones)
// o Unparsed cuando el payload no matchea ninguna forma. Unparsed jamás
// es un error: significa "sin puntaje" y se excluye de los agregados.
type NormalizedScore struct {
	Kind       ScoreKind
	Scalar     float64
	Overall    *float64
	Dimensions map[string]float64
}

// ScoreNormalizer extrae puntajes canónicos de payloads con esquema libre.
// Es un value type sin estado; seguro para uso concurrente.
type ScoreNormalizer struct{}

// Normalize parsea el payload crudo hacia la unión etiquetada. Entrada
// nula, vacía o malformada produce Unparsed, nunca un error.
func (ScoreNormalizer) Normalize(raw json.RawMessage) NormalizedScore {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return NormalizedScore{Kind: ScoreUnparsed}
	}

	var scalar float64
	if err := json.Unmarshal(raw, &scalar); err == nil {
		return NormalizedScore{Kind: ScoreScalar, Scalar: scalar}
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return NormalizedScore{Kind: ScoreUnparsed}
	}

	score := NormalizedScore{
		Kind:       ScoreComposite,
		Overall:    compositeOverall(payload),
		Dimensions: map[string]float64{},
	}

	for key, value := range payload {
		if _, meta := metaScoreKeys[strings.ToLower(key)]; meta {
			continue
		}
		if num, ok := numericValue(value); ok {
			score.Dimensions[key] = num
			continue
		}
		// Un nivel de anidamiento: {"django": {"score": 6}} cuenta como
		// dimensión django=6. Más profundo se ignora en silencio.
		if nested, ok := value.(map[string]interface{}); ok {
			if num := compositeOverall(nested); num != nil {
				score.Dimensions[key] = *num
			}
		}
	}

	return score
}

// ExtractOverall devuelve el puntaje canónico del payload, o nil cuando
// no hay puntaje extraíble.
func (n ScoreNormalizer) ExtractOverall(raw json.RawMessage) *float64 {
	score := n.Normalize(raw)
	switch score.Kind {
	case ScoreScalar:
		v := score.Scalar
		return &v
	case ScoreComposite:
		return score.Overall
	default:
		return nil
	}
}

// ExtractDimensions devuelve las dimensiones del payload; entrada no-mapa
// produce un mapa vacío.
func (n ScoreNormalizer) ExtractDimensions(raw json.RawMessage) map[string]float64 {
	score := n.Normalize(raw)
	if score.Kind != ScoreComposite || score.Dimensions == nil {
		return map[string]float64{}
	}
	return score.Dimensions
}

// compositeOverall busca el primer valor numérico bajo las claves de
// prioridad, sin distinguir mayúsculas.
func compositeOverall(payload map[string]interface{}) *float64 {
	for _, priority := range overallPriorityKeys {
		for key, value := range payload {
			if !strings.EqualFold(key, priority) {
				continue
			}
			if num, ok := numericValue(value); ok {
				return &num
			}
		}
	}
	return nil
}

func numericValue(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
