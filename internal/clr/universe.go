package clr

import (
	"github.com/funvibe/gneedle/internal/assembly"
	"github.com/funvibe/gneedle/internal/config"
	"github.com/funvibe/gneedle/internal/typesystem"
)

const (
	systemNamespace      = config.SystemNamespace
	collectionsNamespace = "System.Collections.Generic"
)

// CoreLib is the core library assembly holding the well-known types.
var CoreLib = NewAssembly(assembly.Identity{
	Name:           config.CoreLibName,
	Version:        assembly.MustParseVersion(config.CoreLibVersion),
	Culture:        config.NeutralCulture,
	PublicKeyToken: config.CoreLibPublicKey,
})

var (
	Object    = CoreLib.Define(systemNamespace, "Object")
	ValueType = CoreLib.Define(systemNamespace, "ValueType")
	Void      = CoreLib.Define(systemNamespace, "Void")
	Boolean   = CoreLib.Define(systemNamespace, "Boolean")
	Char      = CoreLib.Define(systemNamespace, "Char")
	SByte     = CoreLib.Define(systemNamespace, "SByte")
	Byte      = CoreLib.Define(systemNamespace, "Byte")
	Int16     = CoreLib.Define(systemNamespace, "Int16")
	UInt16    = CoreLib.Define(systemNamespace, "UInt16")
	Int32     = CoreLib.Define(systemNamespace, "Int32")
	UInt32    = CoreLib.Define(systemNamespace, "UInt32")
	Int64     = CoreLib.Define(systemNamespace, "Int64")
	UInt64    = CoreLib.Define(systemNamespace, "UInt64")
	Single    = CoreLib.Define(systemNamespace, "Single")
	Double    = CoreLib.Define(systemNamespace, "Double")
	Decimal   = CoreLib.Define(systemNamespace, "Decimal")
	String    = CoreLib.Define(systemNamespace, "String")
	Guid      = CoreLib.Define(systemNamespace, "Guid")
)

var (
	Nullable = CoreLib.Define(systemNamespace, "Nullable", ParamSpec{
		Name:        "T",
		Attributes:  typesystem.NotNullableValueTypeConstraint | typesystem.DefaultConstructorConstraint,
		Constraints: []*Type{ValueType},
	})
	Action = CoreLib.Define(systemNamespace, "Action", ParamSpec{Name: "T", Attributes: typesystem.Contravariant})
	Func   = CoreLib.Define(systemNamespace, "Func",
		ParamSpec{Name: "T", Attributes: typesystem.Contravariant},
		ParamSpec{Name: "TResult", Attributes: typesystem.Covariant})

	List           = CoreLib.Define(collectionsNamespace, "List", Params("T")...)
	ListEnumerator = List.Nested("Enumerator")
	Dictionary     = CoreLib.Define(collectionsNamespace, "Dictionary", Params("TKey", "TValue")...)
	KeyValuePair   = CoreLib.Define(collectionsNamespace, "KeyValuePair", Params("TKey", "TValue")...)
	IEnumerable    = CoreLib.Define(collectionsNamespace, "IEnumerable", ParamSpec{Name: "T", Attributes: typesystem.Covariant})
	IComparer      = CoreLib.Define(collectionsNamespace, "IComparer", ParamSpec{Name: "T", Attributes: typesystem.Contravariant})
)

// Aliases maps language keywords to the core types they stand for.
var Aliases = map[string]*Type{
	"bool":    Boolean,
	"char":    Char,
	"sbyte":   SByte,
	"byte":    Byte,
	"short":   Int16,
	"ushort":  UInt16,
	"int":     Int32,
	"uint":    UInt32,
	"long":    Int64,
	"ulong":   UInt64,
	"float":   Single,
	"double":  Double,
	"decimal": Decimal,
	"string":  String,
	"object":  Object,
	"void":    Void,
}

// Lookup finds a well-known type by full name.
func Lookup(fullName string) (*Type, bool) {
	return CoreLib.Lookup(fullName)
}
