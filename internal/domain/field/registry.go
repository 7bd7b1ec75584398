package field

import (
	"regexp"
	"slices"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"

	"github.com/jhoicas/catalogo-api/internal/domain"
)

var keyPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Registry registro de definiciones de campo en memoria. Se construye desde
// una lectura del almacenamiento; si una operación falla el registro no cambia.
type Registry struct {
	defs  []Definition
	newID func() string
}

// NewRegistry copia defs; el orden se conserva.
func NewRegistry(defs []Definition) *Registry {
	return &Registry{defs: slices.Clone(defs), newID: uuid.NewString}
}

// All definiciones en orden de registro.
func (r *Registry) All() []Definition { return slices.Clone(r.defs) }

// Get busca por id.
func (r *Registry) Get(id string) (Definition, bool) {
	i := r.index(id)
	if i < 0 {
		return Definition{}, false
	}
	return r.defs[i], true
}

func (r *Registry) index(id string) int {
	return slices.IndexFunc(r.defs, func(d Definition) bool { return d.ID == id })
}

// Create valida def y la registra. Id vacío = generado.
func (r *Registry) Create(def Definition) (Definition, error) {
	def = normalize(def)
	if def.ID == "" {
		def.ID = r.newID()
	} else if r.index(def.ID) >= 0 {
		return Definition{}, domain.Duplicate(domain.CodeDuplicateID, "id", "ya existe un campo con id %q", def.ID)
	}
	if err := validateDefinition(def); err != nil {
		return Definition{}, err
	}
	if err := r.checkUnique(def, ""); err != nil {
		return Definition{}, err
	}
	r.defs = append(r.defs, def)
	return def, nil
}

// Update reemplaza la definición id con las mismas reglas que Create,
// excluyendo el propio registro de la comparación.
func (r *Registry) Update(id string, def Definition) (Definition, error) {
	i := r.index(id)
	if i < 0 {
		return Definition{}, domain.NotFound("campo %q no encontrado", id)
	}
	def = normalize(def)
	def.ID = id
	def.CreatedAt = r.defs[i].CreatedAt
	if err := validateDefinition(def); err != nil {
		return Definition{}, err
	}
	if err := r.checkUnique(def, id); err != nil {
		return Definition{}, err
	}
	r.defs[i] = def
	return def, nil
}

// SetStatus alterna disponibilidad sin borrar la definición.
func (r *Registry) SetStatus(id string, available bool) (Definition, error) {
	i := r.index(id)
	if i < 0 {
		return Definition{}, domain.NotFound("campo %q no encontrado", id)
	}
	r.defs[i].Status = available
	return r.defs[i], nil
}

// Delete elimina la definición. Las instantáneas ya copiadas en productos no cambian.
func (r *Registry) Delete(id string) error {
	i := r.index(id)
	if i < 0 {
		return domain.NotFound("campo %q no encontrado", id)
	}
	r.defs = slices.Delete(r.defs, i, i+1)
	return nil
}

func normalize(def Definition) Definition {
	def.ID = strings.TrimSpace(def.ID)
	def.Key = strings.TrimSpace(def.Key)
	def.Label = strings.TrimSpace(def.Label)
	seen := make([]IdentifierType, 0, len(def.ApplicableFor))
	for _, it := range def.ApplicableFor {
		if !slices.Contains(seen, it) {
			seen = append(seen, it)
		}
	}
	def.ApplicableFor = seen
	if def.Type != TypeSelect {
		def.Options = nil
	} else {
		opts := make([]string, 0, len(def.Options))
		for _, o := range def.Options {
			if o = strings.TrimSpace(o); o != "" {
				opts = append(opts, o)
			}
		}
		def.Options = opts
	}
	return def
}

func validateDefinition(def Definition) error {
	if !keyPattern.MatchString(def.Key) {
		return domain.Validation(domain.CodeInvalidKey, "key",
			"la clave %q debe empezar con letra o _ y contener solo letras, dígitos o _", def.Key)
	}
	if def.Label == "" {
		return domain.Validation(domain.CodeInvalidInput, "label", "label es requerido")
	}
	if !def.Type.Valid() {
		return domain.Validation(domain.CodeInvalidInput, "type", "tipo de campo %q no soportado", def.Type)
	}
	if len(def.ApplicableFor) == 0 {
		return domain.Validation(domain.CodeInvalidInput, "applicableFor", "applicableFor requiere al menos un valor")
	}
	for _, it := range def.ApplicableFor {
		if !it.Valid() {
			return domain.Validation(domain.CodeInvalidInput, "applicableFor", "applicableFor %q no soportado", it)
		}
	}
	if def.Type == TypeSelect && len(def.Options) == 0 {
		return domain.Validation(domain.CodeInvalidInput, "options", "los campos select requieren al menos una opción")
	}
	if def.Validations != nil {
		if def.Validations.Kind() != def.Type {
			return domain.Validation(domain.CodeInvalidInput, "validations",
				"validaciones de tipo %q no aplican a campos %q", def.Validations.Kind(), def.Type)
		}
		if err := def.Validations.consistent(); err != nil {
			return err
		}
	}
	if def.DefaultValue != nil {
		if err := validateDefault(def); err != nil {
			return err
		}
	}
	return nil
}

func validateDefault(def Definition) error {
	switch def.Type {
	case TypeCheckbox:
		if _, ok := def.DefaultValue.(bool); !ok {
			return domain.Validation(domain.CodeInvalidInput, "defaultValue", "el valor por defecto de un checkbox debe ser booleano")
		}
		return nil
	case TypeText, TypeSelect, TypeDate:
		if _, ok := def.DefaultValue.(string); !ok {
			return domain.Validation(domain.CodeInvalidInput, "defaultValue", "el valor por defecto debe ser texto")
		}
	}
	probe := def
	probe.IsRequired = false
	if err := ValidateRowValue(probe, def.DefaultValue); err != nil {
		return domain.Validation(domain.CodeInvalidInput, "defaultValue", "valor por defecto inválido: %v", err)
	}
	return nil
}

func fold(s string) string { return cases.Fold().String(strings.TrimSpace(s)) }

func sameSet(a, b []IdentifierType) bool {
	if len(a) != len(b) {
		return false
	}
	for _, x := range a {
		if !slices.Contains(b, x) {
			return false
		}
	}
	return true
}

func overlaps(a, b []IdentifierType) bool {
	for _, x := range a {
		if slices.Contains(b, x) {
			return true
		}
	}
	return false
}

// checkUnique: clave exacta, luego etiqueta sin distinguir mayúsculas, luego
// la combinación (clave o etiqueta) con el mismo conjunto applicableFor.
func (r *Registry) checkUnique(def Definition, excludeID string) error {
	others := make([]Definition, 0, len(r.defs))
	for _, o := range r.defs {
		if o.ID != excludeID {
			others = append(others, o)
		}
	}
	for _, o := range others {
		if o.Key == def.Key {
			return domain.Duplicate(domain.CodeDuplicateKey, "key", "ya existe un campo con la clave %q", def.Key).
				WithDetails(map[string]any{"existingId": o.ID})
		}
	}
	for _, o := range others {
		if fold(o.Label) == fold(def.Label) {
			return domain.Duplicate(domain.CodeDuplicateLabel, "label", "ya existe un campo con la etiqueta %q", o.Label).
				WithDetails(map[string]any{"existingId": o.ID})
		}
	}
	for _, o := range others {
		sameIdentity := fold(o.Key) == fold(def.Key) || fold(o.Label) == fold(def.Label)
		if sameIdentity && sameSet(o.ApplicableFor, def.ApplicableFor) && overlaps(o.ApplicableFor, def.ApplicableFor) {
			return domain.Duplicate(domain.CodeDuplicateScopedCombo, "key",
				"el campo %q ya existe para %v", o.Label, o.ApplicableFor).
				WithDetails(map[string]any{"existingId": o.ID})
		}
	}
	return nil
}

// Selection datos de un producto que determinan sus campos.
type Selection struct {
	IdentifierType      IdentifierType
	SelectedFieldIDs    []string
	FieldConfigurations []Definition
}

// ResolveFieldsFor: la instantánea del producto gana si existe; si no, los ids
// seleccionados que siguen en el registro, disponibles y aplicables al tipo de
// identificador del producto.
func (r *Registry) ResolveFieldsFor(s Selection) []Definition {
	if len(s.FieldConfigurations) > 0 {
		return slices.Clone(s.FieldConfigurations)
	}
	out := []Definition{}
	for _, id := range s.SelectedFieldIDs {
		def, ok := r.Get(id)
		if !ok || !def.Status {
			continue
		}
		if s.IdentifierType != "" && !def.AppliesTo(s.IdentifierType) {
			continue
		}
		out = append(out, def)
	}
	return out
}

// Available definiciones disponibles aplicables a it (vacío = cualquiera).
func (r *Registry) Available(it IdentifierType) []Definition {
	out := []Definition{}
	for _, d := range r.defs {
		if d.Status && (it == "" || d.AppliesTo(it)) {
			out = append(out, d)
		}
	}
	return out
}
