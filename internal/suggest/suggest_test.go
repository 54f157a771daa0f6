package suggest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	text := "Aquí tienes algunas ideas basadas en tu marca.\n" +
		"SUGERENCIAS: 1. Zurvok, 2. **Kreluna**, \"Nimbrox\", , Solé\n" +
		"¿Quieres más?"

	assert.Equal(t, []string{"Zurvok", "Kreluna", "Nimbrox", "Solé"}, Parse(text))
	assert.Equal(t, "Aquí tienes algunas ideas basadas en tu marca.\n\n¿Quieres más?", Strip(text))
}

func TestParse_EnglishAndCase(t *testing.T) {
	assert.Equal(t, []string{"Zurvok", "Kreluna"}, Parse("suggestions:Zurvok,Kreluna"))
	assert.Equal(t, []string{"Zurvok"}, Parse("Sugerencias:  Zurvok"))
}

func TestParse_NoLine(t *testing.T) {
	assert.Nil(t, Parse("No names this time."))
	assert.Nil(t, Parse(""))
}

func TestParse_FirstLineOnly(t *testing.T) {
	got := Parse("SUGERENCIAS: Alfa, Bravo\nSUGERENCIAS: Charlie")
	assert.Equal(t, []string{"Alfa", "Bravo"}, got)
}

func TestParseList_Length(t *testing.T) {
	long := strings.Repeat("a", MaxNameLength)
	edge := strings.Repeat("ñ", MaxNameLength-1)
	got := ParseList(long + ", " + edge + ", ok")
	assert.Equal(t, []string{edge, "ok"}, got)
}

func TestParseList_Empty(t *testing.T) {
	got := ParseList(" , ,** ,\"\"")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
