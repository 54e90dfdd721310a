// Package classify maps captured tool output to a closed set of failure
// categories. Classification is data-driven: an ordered table of named
// signatures is matched against the combined stdout+stderr of one
// invocation, and the first match wins. The package never decides what to do
// about a failure; see the remediate package for that.
package classify

import "regexp"

// Category is a canonical failure category.
type Category string

// The closed set of failure categories. Unclassified is the fallback when no
// signature matches.
const (
	VersionIncompatibility     Category = "version-incompatibility"
	StaleDependencyCount       Category = "stale-dependency-count"
	AccessDenied               Category = "access-denied"
	KeyAuthDisabled            Category = "key-auth-disabled"
	MissingIdentityAfterCreate Category = "missing-identity-after-create"
	StalePlan                  Category = "stale-plan"
	DeprecationWarning         Category = "deprecation-warning"
	Unclassified               Category = "unclassified"
)

// Signature is a named pattern tied to a category. Patterns match anywhere in
// the output, across line boundaries: some tool errors put the decisive
// detail (a resource path, a storage account name) on the line after the
// headline message.
type Signature struct {
	Name     string
	Pattern  *regexp.Regexp
	Category Category
}

// signatures is the ordered match table. Order is a designed tie-break, not
// incidental: more specific auth failures (key-auth, identity propagation)
// must win over the generic authorization signature, and real errors must win
// over deprecation warnings that often appear in the same output.
var signatures = []Signature{
	{
		Name:     "core-version-unsupported",
		Pattern:  regexp.MustCompile(`Unsupported Terraform Core version|required_version.*does not match|Error: Incompatible provider version`),
		Category: VersionIncompatibility,
	},
	{
		Name:     "count-not-determinable",
		Pattern:  regexp.MustCompile(`(?s)Invalid (count|for_each) argument.*(cannot be determined until apply|depends on resource attributes)`),
		Category: StaleDependencyCount,
	},
	{
		Name:     "storage-key-auth-disabled",
		Pattern:  regexp.MustCompile(`KeyBasedAuthenticationNotPermitted|Key based authentication is not permitted`),
		Category: KeyAuthDisabled,
	},
	{
		Name:     "principal-not-yet-replicated",
		Pattern:  regexp.MustCompile(`PrincipalNotFound|does not exist in the directory|was not found in the directory`),
		Category: MissingIdentityAfterCreate,
	},
	{
		Name:     "authorization-failed",
		Pattern:  regexp.MustCompile(`AuthorizationFailed|does not have authorization to perform action|Status=403`),
		Category: AccessDenied,
	},
	{
		Name:     "saved-plan-stale",
		Pattern:  regexp.MustCompile(`Saved plan is stale|state was changed by another operation`),
		Category: StalePlan,
	},
	{
		Name:     "argument-deprecated",
		Pattern:  regexp.MustCompile(`Warning: (Argument is deprecated|Deprecated Resource|Deprecated attribute)`),
		Category: DeprecationWarning,
	},
}

// Signatures returns a copy of the ordered signature table, mostly for tests
// and for printing what the classifier knows about.
func Signatures() []Signature {
	out := make([]Signature, len(signatures))
	copy(out, signatures)
	return out
}

// Classify returns the category of the first signature matching output, or
// Unclassified.
func Classify(output string) Category {
	if sig, ok := Lookup(output); ok {
		return sig.Category
	}
	return Unclassified
}

// Lookup returns the first matching signature, with ok=false when nothing
// matched.
func Lookup(output string) (Signature, bool) {
	for _, sig := range signatures {
		if sig.Pattern.MatchString(output) {
			return sig, true
		}
	}
	return Signature{}, false
}
