package schema

// BuiltinDefinitionsDocument is the name the builtin semantic-type library is
// registered under. Load registers it automatically unless the caller
// supplies a document of the same name or passes WithoutBuiltins.
const BuiltinDefinitionsDocument = "definitions"

// builtinDefinitions is the shared semantic-type vocabulary for operational
// configuration schemas. These are ordinary schema fragments reached through
// references; the validator applies its generic bound and enum rules to them
// and carries no special cases.
const builtinDefinitions = `
# Shared semantic types for operational configuration schemas.
definitions:
  # posint accepts integers greater than or equal to 1.
  posint:
    type: integer
    minimum: 1

  # nonnegative_int accepts integers greater than or equal to 0.
  nonnegative_int:
    type: integer
    minimum: 0

  # percentage accepts fractions in the closed interval [0, 1].
  percentage:
    type: number
    minimum: 0
    maximum: 1

  # aws_region accepts the region codes clusters may be bound to.
  aws_region:
    type: string
    enum:
      - us-east-1
      - us-east-2
      - us-west-1
      - us-west-2
      - eu-west-1

  # reserved accepts no finite value at all: its minimum is positive
  # infinity, which only a value of positive infinity satisfies. Schema
  # authors use it to declare a field whose support has not shipped yet.
  # Easy to misread as "no constraint"; it is the opposite.
  reserved:
    type: number
    minimum: .inf
`
