package metamodel

// Package is a meta-routable package document as loaded from the entity
// store. It is meta-routable iff Annotations carries meta=true and at
// least one per-verb annotation among {get, post, delete} whose value is a
// string action name local to the system namespace.
type Package struct {
	Namespace   string
	Name        string
	Parameters  Parameters
	Annotations Annotations
	Publish     bool
}

// FQN returns the package's fully-qualified entity path.
func (p Package) FQN() EntityPath {
	return EntityPath{Namespace: p.Namespace, Name: p.Name}
}

// VerbAnnotationKey lower-cases an HTTP method into the annotation key
// PackageResolver looks up (get, post, delete).
func VerbAnnotationKey(verb string) string {
	switch verb {
	case "GET", "get":
		return "get"
	case "POST", "post":
		return "post"
	case "DELETE", "delete":
		return "delete"
	default:
		return ""
	}
}

// Action is the conceptual action document backing a meta-routed
// invocation: always namespaced under the system identity.
type Action struct {
	Namespace  string
	Package    string
	Name       string
	Parameters Parameters
}

// FQN returns the action's fully-qualified entity path.
func (a Action) FQN() EntityPath {
	return EntityPath{Namespace: a.Namespace, Package: a.Package, Name: a.Name}
}
