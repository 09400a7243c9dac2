// Package compiler turns CUE query documents into predicate trees.
//
// A query document has an optional mode and a where list:
//
//	mode: "single"
//	where: [
//		{or: [
//			{attr: "tenantId", like: "%|%%"},
//			{attr: "processDefinitionId", equals: "undefined"},
//		]},
//		{variable: "var1", likeIgnoreCase: "%|%%"},
//	]
//
// where is an implicit AND. or and and nest. A leaf names exactly one of
// attr or variable and exactly one of equals, like or likeIgnoreCase.
// Operands may be strings, integers, booleans or null; floats are rejected.
package compiler
