package config

// ConfigFileName is the catalog file looked up by FindConfig.
const ConfigFileName = "gneedle.yaml"

// ConfigFileNames are all recognized catalog file names, in lookup order.
var ConfigFileNames = []string{"gneedle.yaml", "gneedle.yml"}

// DefaultIndexFile is where the module writer saves when no path is given.
const DefaultIndexFile = "gneedle.db"

// DefaultAssemblyVersion is used for assemblies declared without a version.
const DefaultAssemblyVersion = "1.0.0.0"

// Error messages shared by the type-identity packages.
const (
	DirtyModuleOperation      = "the module is still dirty"
	ArchitectureNotSupported  = "not supported architecture"
	InvalidConstraint         = "the combination of constraints is invalid: %s"
	IsNotNongenericType       = "the type should not contain any generic parameters or arguments: %s"
	IsNotParameterizedGeneric = "the type is not a parameterized generic type: %s"
	ArityMismatch             = "the type %s expects %d generic arguments, got %d"
	EmptyParameterName        = "generic parameter name is empty"
	InvalidTypeName           = "invalid type name"
	UnrecognizedTypeShape     = "unrecognized type shape: %T"
	OutOfRange                = "%s value %q is out of range"
	UnknownType               = "unknown type %q"
)

// Well-known runtime names.
const (
	SystemNamespace   = "System"
	ValueTypeName     = "ValueType"
	CoreLibName       = "System.Private.CoreLib"
	CoreLibVersion    = "8.0.0.0"
	CoreLibPublicKey  = "7cec85d7bea7798e"
	NeutralCulture    = "neutral"
	NestedSeparator   = '+'
	ILNestedSeparator = '/'
	ArityMarker       = '`'
)
