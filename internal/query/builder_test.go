package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/procquery/internal/ir"
	"github.com/roach88/procquery/internal/queryir"
	"github.com/roach88/procquery/internal/querysql"
)

func querysqlCompile(g queryir.Group) (string, []any, error) {
	return querysql.NewCompiler().Compile(g, querysql.ModeList)
}

func TestBuilder_EmptyBuildsEmptyAnd(t *testing.T) {
	g, err := NewBuilder().Build()
	require.NoError(t, err)
	assert.Equal(t, queryir.And, g.Connective)
	assert.True(t, g.IsEmpty())
}

func TestBuilder_ConditionsJoinRootAnd(t *testing.T) {
	g, err := NewBuilder().
		ProcessInstanceTenantIDLike("%|%%").
		ProcessDefinitionKey("oneTaskProcess").
		Build()
	require.NoError(t, err)

	assert.Equal(t, `(tenantId LIKE "%|%%" AND processDefinitionKey = "oneTaskProcess")`, g.String())
}

func TestBuilder_OrScope(t *testing.T) {
	g, err := NewBuilder().
		Or().
		ProcessInstanceTenantIDLike("%|%%").
		ProcessDefinitionID("undefined").
		Build()
	require.NoError(t, err)

	require.Len(t, g.Children, 1)
	or, ok := g.Children[0].(queryir.Group)
	require.True(t, ok)
	assert.Equal(t, queryir.Or, or.Connective)
	assert.Len(t, or.Children, 2)
	assert.Equal(t, `((tenantId LIKE "%|%%" OR processDefinitionId = "undefined"))`, g.String())
}

func TestBuilder_EndOrReturnsToParent(t *testing.T) {
	g, err := NewBuilder().
		ProcessDefinitionKey("k").
		Or().
		ProcessInstanceName("a").
		ProcessInstanceName("b").
		EndOr().
		ProcessInstanceTenantID("t").
		Build()
	require.NoError(t, err)

	assert.Equal(t, `(processDefinitionKey = "k" AND (name = "a" OR name = "b") AND tenantId = "t")`, g.String())
}

func TestBuilder_AndInsideOr(t *testing.T) {
	g, err := NewBuilder().
		Or().
		ProcessInstanceID("x").
		And().
		ProcessInstanceTenantID("t").
		VariableValueEquals("n", ir.Long(1)).
		End().
		EndOr().
		Build()
	require.NoError(t, err)

	assert.Equal(t, `((id = "x" OR (tenantId = "t" AND var:n = 1)))`, g.String())
}

func TestBuilder_EmptyScopeLeftOutOfString(t *testing.T) {
	g, err := NewBuilder().
		Or().
		ProcessInstanceTenantIDLike("%|%%").
		And().
		End().
		EndOr().
		Build()
	require.NoError(t, err)

	assert.Equal(t, `((tenantId LIKE "%|%%"))`, g.String())

	sql, params, err := querysqlCompile(g)
	require.NoError(t, err)
	assert.Contains(t, sql, "WHERE pi.tenant_id LIKE ? ESCAPE '|'")
	assert.Equal(t, []any{"%|%%"}, params)
}

func TestBuilder_ContainsEscapes(t *testing.T) {
	g, err := NewBuilder().
		ProcessInstanceTenantIDContains("One%").
		ProcessInstanceNameContains("a_b").
		VariableValueContains("var1", "x|y").
		Build()
	require.NoError(t, err)

	require.Len(t, g.Children, 3)
	assert.Equal(t, ir.String("%One|%%"), g.Children[0].(queryir.Condition).Operand)
	assert.Equal(t, ir.String("%a|_b%"), g.Children[1].(queryir.Condition).Operand)
	assert.Equal(t, ir.String("%x||y%"), g.Children[2].(queryir.Condition).Operand)
}

func TestBuilder_SameAttributeNotMerged(t *testing.T) {
	g, err := NewBuilder().
		ProcessInstanceTenantID("One%").
		ProcessInstanceTenantID("Two_").
		Build()
	require.NoError(t, err)
	assert.Len(t, g.Children, 2)
}

func TestBuilder_Errors(t *testing.T) {
	testCases := []struct {
		name  string
		build func(*Builder) *Builder
	}{
		{"empty variable name", func(b *Builder) *Builder { return b.VariableValueLike("", "x") }},
		{"nil variable value", func(b *Builder) *Builder { return b.VariableValueEquals("v", nil) }},
		{"unknown field", func(b *Builder) *Builder {
			return b.Condition(queryir.Field("startTime"), queryir.OpEquals, ir.String("x"))
		}},
		{"end at root", func(b *Builder) *Builder { return b.End() }},
		{"end or in and scope", func(b *Builder) *Builder { return b.Or().And().EndOr() }},
		{"end or at root", func(b *Builder) *Builder { return b.EndOr() }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.build(NewBuilder()).Build()
			require.Error(t, err)
			assert.True(t, queryir.IsInvalidPredicate(err))
		})
	}
}

func TestBuilder_FirstErrorWins(t *testing.T) {
	_, err := NewBuilder().
		VariableValueLike("", "x").
		End().
		ProcessInstanceTenantID("t").
		Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "variable name is empty")
}

func TestBuilder_BuildSnapshotIsImmutable(t *testing.T) {
	b := NewBuilder().Or().ProcessInstanceName("a")
	g1, err := b.Build()
	require.NoError(t, err)
	before := g1.String()

	b.ProcessInstanceName("b")
	g2, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, before, g1.String())
	assert.NotEqual(t, g1.String(), g2.String())
}

func TestBuilder_BuildClosesScopes(t *testing.T) {
	b := NewBuilder().Or().ProcessInstanceName("a")
	_, err := b.Build()
	require.NoError(t, err)

	// After Build the Or scope is closed, so this lands in the root AND.
	g, err := b.ProcessInstanceTenantID("t").Build()
	require.NoError(t, err)
	assert.Equal(t, `((name = "a") AND tenantId = "t")`, g.String())
}

func TestBuilder_DetachedTerminalCalls(t *testing.T) {
	_, err := NewBuilder().List(t.Context())
	assert.ErrorIs(t, err, errNoExecutor)

	_, err = NewBuilder().SingleResult(t.Context())
	assert.ErrorIs(t, err, errNoExecutor)

	_, err = NewBuilder().Count(t.Context())
	assert.ErrorIs(t, err, errNoExecutor)
}
