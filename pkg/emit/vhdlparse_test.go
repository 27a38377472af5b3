package emit

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oisee/shiftaddc/pkg/hir"
)

const sampleEntity = `
-- a comment before the entity
entity adder_block is
  generic (
    W : integer := 8;
    D : integer := 4
  );
  port (
    a, c : in std_logic_vector(W-1 downto 0);
    sum  : out std_logic_vector(W downto 0);
    clk  : in std_logic
  );
end entity adder_block;
`

func TestParseEntityName(t *testing.T) {
	ent, err := ParseEntity(sampleEntity)
	require.NoError(t, err)
	require.Equal(t, "adder_block", ent.Name)
}

func TestParseEntityGenerics(t *testing.T) {
	ent, err := ParseEntity(sampleEntity)
	require.NoError(t, err)
	require.Len(t, ent.Generics, 2)
	require.Equal(t, "W", ent.Generics[0].Name)
	require.Equal(t, 8, ent.Generics[0].Default)
	require.Equal(t, "D", ent.Generics[1].Name)
	require.Equal(t, 4, ent.Generics[1].Default)
}

func TestParseEntityPortsWithMultipleNamesAndDirections(t *testing.T) {
	ent, err := ParseEntity(sampleEntity)
	require.NoError(t, err)

	byName := make(map[string]ExternalPort, len(ent.Ports))
	for _, p := range ent.Ports {
		byName[p.Name] = p
	}
	require.Equal(t, hir.PortIn, byName["a"].Dir)
	require.Equal(t, hir.PortIn, byName["c"].Dir)
	require.Equal(t, "W-1", byName["a"].WidthExpr)
	require.Equal(t, hir.PortOut, byName["sum"].Dir)
	require.Equal(t, hir.PortIn, byName["clk"].Dir)
	require.Equal(t, "", byName["clk"].WidthExpr) // plain std_logic port
}

func TestParseEntityMissingEntityErrors(t *testing.T) {
	_, err := ParseEntity("architecture behavioral of x is begin end;")
	require.Error(t, err)
}

func TestEvalWidthExprArithmetic(t *testing.T) {
	generics := map[string]int{"W": 8, "D": 4}
	v, err := EvalWidthExpr("W-1", generics)
	require.NoError(t, err)
	require.Equal(t, 7, v)

	v, err = EvalWidthExpr("W - D + 2", generics)
	require.NoError(t, err)
	require.Equal(t, 6, v)

	v, err = EvalWidthExpr("(W + D) * 2", generics)
	require.NoError(t, err)
	require.Equal(t, 24, v)
}

func TestEvalWidthExprUnknownIdentifierErrors(t *testing.T) {
	_, err := EvalWidthExpr("UNKNOWN - 1", map[string]int{"W": 8})
	require.Error(t, err)
}

func TestEvalWidthExprDivisionByZeroErrors(t *testing.T) {
	_, err := EvalWidthExpr("W / 0", map[string]int{"W": 8})
	require.Error(t, err)
}

func TestEvalWidthExprRejectsUnsandboxedSyntax(t *testing.T) {
	// No function-call or attribute syntax is supported; a width
	// expression that tries one fails rather than executing it.
	_, err := EvalWidthExpr("W'length", map[string]int{"W": 8})
	require.Error(t, err)
}
