package decant

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/zoobzio/sentinel"
)

func init() {
	// Register the check tag with sentinel
	sentinel.Tag("check")
}

// checkOp identifies a declarative precondition on a string field.
type checkOp int

const (
	checkNonempty checkOp = iota
	checkPrefix
	checkSuffix
	checkOneof
)

// checkRule describes one precondition bound to one field.
type checkRule struct {
	index   []int  // reflect.Value.FieldByIndex access path
	name    string // field name for diagnostics
	op      checkOp
	arg     string   // prefix/suffix argument
	options []string // oneof alternatives
}

// checkPlan holds the compiled preconditions for one value type.
type checkPlan struct {
	typeName string
	rules    []checkRule
}

var (
	checkPlanCache   = make(map[reflect.Type]*checkPlan)
	checkPlanCacheMu sync.RWMutex
)

// getOrBuildCheckPlan returns the cached plan for T, compiling it on
// first use.
func getOrBuildCheckPlan[T any]() (*checkPlan, error) {
	typ := reflect.TypeFor[T]()

	checkPlanCacheMu.RLock()
	if plan, ok := checkPlanCache[typ]; ok {
		checkPlanCacheMu.RUnlock()
		return plan, nil
	}
	checkPlanCacheMu.RUnlock()

	checkPlanCacheMu.Lock()
	defer checkPlanCacheMu.Unlock()

	if plan, ok := checkPlanCache[typ]; ok {
		return plan, nil
	}

	plan, err := buildCheckPlan[T]()
	if err != nil {
		return nil, err
	}

	checkPlanCache[typ] = plan
	return plan, nil
}

// buildCheckPlan compiles check rules for type T by scanning struct tags.
func buildCheckPlan[T any]() (*checkPlan, error) {
	spec := sentinel.Scan[T]()
	plan := &checkPlan{typeName: spec.TypeName}

	if err := buildCheckRulesRecursive(plan, spec, nil, ""); err != nil {
		return nil, err
	}

	return plan, nil
}

// buildCheckRulesRecursive processes fields and nested structs.
func buildCheckRulesRecursive(plan *checkPlan, spec sentinel.Metadata, parentIndex []int, namePrefix string) error {
	for _, field := range spec.Fields {
		fullIndex := append(append([]int{}, parentIndex...), field.Index...)
		fullName := field.Name
		if namePrefix != "" {
			fullName = namePrefix + "." + field.Name
		}

		// Handle nested structs
		if field.Kind == sentinel.KindStruct {
			nestedSpec := scanNestedType(field.ReflectType)
			if nestedSpec != nil {
				if err := buildCheckRulesRecursive(plan, *nestedSpec, fullIndex, fullName); err != nil {
					return err
				}
			}
			continue
		}

		// Handle pointer to struct
		if field.Kind == sentinel.KindPointer && field.ReflectType.Elem().Kind() == reflect.Struct {
			nestedSpec := scanNestedType(field.ReflectType.Elem())
			if nestedSpec != nil {
				if err := buildCheckRulesRecursive(plan, *nestedSpec, fullIndex, fullName); err != nil {
					return err
				}
			}
			continue
		}

		val, ok := field.Tags["check"]
		if !ok {
			continue
		}

		if field.ReflectType.Kind() != reflect.String {
			return fmt.Errorf("check tag on non-string field %s", fullName)
		}

		rule, err := parseCheckRule(val, fullName)
		if err != nil {
			return err
		}
		rule.index = fullIndex
		rule.name = fullName
		plan.rules = append(plan.rules, rule)
	}

	return nil
}

// parseCheckRule parses a check tag value into a rule.
func parseCheckRule(val, field string) (checkRule, error) {
	op, arg, hasArg := strings.Cut(val, "=")

	switch op {
	case "nonempty":
		if hasArg {
			return checkRule{}, fmt.Errorf("check rule %q on field %s takes no argument", op, field)
		}
		return checkRule{op: checkNonempty}, nil
	case "prefix":
		if !hasArg {
			return checkRule{}, fmt.Errorf("check rule %q on field %s requires an argument", op, field)
		}
		return checkRule{op: checkPrefix, arg: arg}, nil
	case "suffix":
		if !hasArg {
			return checkRule{}, fmt.Errorf("check rule %q on field %s requires an argument", op, field)
		}
		return checkRule{op: checkSuffix, arg: arg}, nil
	case "oneof":
		if !hasArg || arg == "" {
			return checkRule{}, fmt.Errorf("check rule %q on field %s requires alternatives", op, field)
		}
		return checkRule{op: checkOneof, options: strings.Split(arg, "|")}, nil
	default:
		return checkRule{}, fmt.Errorf("unknown check rule %q on field %s", val, field)
	}
}

// scanNestedType scans a nested struct type and returns its metadata.
func scanNestedType(rt reflect.Type) *sentinel.Metadata {
	if spec, ok := sentinel.Lookup(rt.String()); ok {
		return &spec
	}

	if rt.Kind() != reflect.Struct {
		return nil
	}

	spec := sentinel.Metadata{
		TypeName:    rt.Name(),
		PackageName: rt.PkgPath(),
		Fields:      make([]sentinel.FieldMetadata, 0, rt.NumField()),
	}

	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}

		fm := sentinel.FieldMetadata{
			Name:        sf.Name,
			Type:        sf.Type.String(),
			ReflectType: sf.Type,
			Index:       sf.Index,
			Tags:        map[string]string{},
		}
		if val, ok := sf.Tag.Lookup("check"); ok {
			fm.Tags["check"] = val
		}

		switch sf.Type.Kind() {
		case reflect.Struct:
			fm.Kind = sentinel.KindStruct
		case reflect.Ptr:
			fm.Kind = sentinel.KindPointer
		case reflect.Slice, reflect.Array:
			fm.Kind = sentinel.KindSlice
		case reflect.Map:
			fm.Kind = sentinel.KindMap
		case reflect.Interface:
			fm.Kind = sentinel.KindInterface
		default:
			fm.Kind = sentinel.KindScalar
		}

		spec.Fields = append(spec.Fields, fm)
	}

	return &spec
}

// apply evaluates every rule against obj and returns the first
// violation. Fields behind nil pointers are skipped: an absent
// optional branch has nothing to check.
func (p *checkPlan) apply(obj reflect.Value) error {
	for i := range p.rules {
		rule := &p.rules[i]

		fv, ok := fieldByIndexNilSafe(obj, rule.index)
		if !ok {
			continue
		}

		if err := rule.evaluate(fv.String()); err != nil {
			return err
		}
	}
	return nil
}

// evaluate checks one string value against the rule.
func (r *checkRule) evaluate(s string) error {
	switch r.op {
	case checkNonempty:
		if s == "" {
			return fmt.Errorf("requirement failed: %s must not be empty", r.name)
		}
	case checkPrefix:
		if !strings.HasPrefix(s, r.arg) {
			return fmt.Errorf("requirement failed: %s must start with %q", r.name, r.arg)
		}
	case checkSuffix:
		if !strings.HasSuffix(s, r.arg) {
			return fmt.Errorf("requirement failed: %s must end with %q", r.name, r.arg)
		}
	case checkOneof:
		for _, opt := range r.options {
			if s == opt {
				return nil
			}
		}
		return fmt.Errorf("requirement failed: %s must be one of %s", r.name, strings.Join(r.options, ", "))
	}
	return nil
}

// fieldByIndexNilSafe walks an index path, dereferencing intermediate
// pointers and reporting false when any of them is nil.
func fieldByIndexNilSafe(v reflect.Value, index []int) (reflect.Value, bool) {
	for _, i := range index {
		for v.Kind() == reflect.Ptr {
			if v.IsNil() {
				return reflect.Value{}, false
			}
			v = v.Elem()
		}
		v = v.Field(i)
	}
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	return v, true
}
