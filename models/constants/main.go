package constants

/*
	Defines a set of base level
	constants and enums to be used
	throughout the search engine and
	its associated services.
*/
type GenotypeClass string
type GenotypeRequirement string

type AffectedStatus string
type Sex string

type InheritanceMode string
type VariantType string
type BurdenClass string
