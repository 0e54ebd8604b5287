package rom

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"romgen/addr"
	"romgen/raster"
)

func init() {
	// Decodes to a picture with no pixels at all.
	image.RegisterFormat("empty", "EMPTY",
		func(io.Reader) (image.Image, error) {
			return image.NewNRGBA(image.Rect(0, 0, 0, 0)), nil
		},
		func(io.Reader) (image.Config, error) {
			return image.Config{ColorModel: color.NRGBAModel}, nil
		})
}

func bmpBytes(t *testing.T, w, h int, set func(m *image.RGBA)) []byte {
	t.Helper()

	m := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 3; i < len(m.Pix); i += 4 {
		m.Pix[i] = 0xff
	}
	if set != nil {
		set(m)
	}

	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, m))
	return buf.Bytes()
}

func tilesBMP(t *testing.T) []byte {
	return bmpBytes(t, 2, 2, func(m *image.RGBA) {
		m.SetRGBA(0, 0, color.RGBA{R: 255, G: 0, B: 128, A: 0xff})
		m.SetRGBA(1, 0, color.RGBA{R: 0, G: 255, B: 0, A: 0xff})
		m.SetRGBA(0, 1, color.RGBA{R: 0x12, G: 0x34, B: 0x56, A: 0xff})
		m.SetRGBA(1, 1, color.RGBA{R: 255, G: 255, B: 255, A: 0xff})
	})
}

func whenLines(doc string) []string {
	var lines []string
	for _, l := range strings.Split(doc, "\n") {
		if strings.HasPrefix(l, "      when ") {
			lines = append(lines, l)
		}
	}
	return lines
}

func TestGenerate(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "art/tiles.bmp", tilesBMP(t), 0644))

	res, err := New(WithFs(fs)).Generate("art/tiles.bmp", "")
	require.NoError(t, err)

	assert.Equal(t, "art/tiles_rom.vhd", res.Output)
	assert.Equal(t, "tiles_rom", res.Entity)
	assert.Equal(t, 5, res.Entries)
	assert.Equal(t, addr.Plan{Height: 2, Width: 2, RowBits: 1, ColBits: 1}, res.Plan)

	doc, err := afero.ReadFile(fs, res.Output)
	require.NoError(t, err)
	assert.EqualValues(t, len(doc), res.Size)
	assert.True(t, strings.HasPrefix(string(doc), "library IEEE;\n"))
	assert.Contains(t, string(doc), "entity tiles_rom is\n")
	assert.Contains(t, string(doc), "architecture Behavioral of tiles_rom is\n")
	assert.Equal(t, []string{
		`      when "00" => color_data <= "111100001000";`,
		`      when "01" => color_data <= "000011110000";`,
		`      when "10" => color_data <= "000100110101";`,
		`      when "11" => color_data <= "111111111111";`,
		`      when others => color_data <= (others => '0');`,
	}, whenLines(string(doc)))

	entries, err := afero.ReadDir(fs, "art")
	require.NoError(t, err)
	assert.Len(t, entries, 2, "temporary files must not be left behind")

	info, err := fs.Stat(res.Output)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestGenerateSingleBlackPixel(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "dot.bmp", bmpBytes(t, 1, 1, nil), 0644))

	res, err := New(WithFs(fs)).Generate("dot.bmp", "")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Plan.AddrBits())

	doc, err := afero.ReadFile(fs, "dot_rom.vhd")
	require.NoError(t, err)
	assert.Equal(t, []string{
		`      when "" => color_data <= "000000000000";`,
		`      when others => color_data <= (others => '0');`,
	}, whenLines(string(doc)))
}

func TestGenerateExplicitOutputAndEntity(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "in/game-over.bmp", tilesBMP(t), 0644))
	require.NoError(t, afero.WriteFile(fs, "out/screen.vhd", []byte("stale"), 0644))

	res, err := New(WithFs(fs), WithEntity("screen")).Generate("in/game-over.bmp", "out/screen.vhd")
	require.NoError(t, err)
	assert.Equal(t, "screen", res.Entity)

	doc, err := afero.ReadFile(fs, "out/screen.vhd")
	require.NoError(t, err)
	assert.Contains(t, string(doc), "entity screen is\n")
	assert.NotContains(t, string(doc), "stale")
}

func TestGenerateSanitisesEntity(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "game-over.v2.bmp", tilesBMP(t), 0644))

	res, err := New(WithFs(fs), WithNaming("_lut", "vhdl")).Generate("game-over.v2.bmp", "")
	require.NoError(t, err)
	assert.Equal(t, "game_over_v2_lut", res.Entity)
	assert.Equal(t, "game-over.v2_lut.vhdl", res.Output)

	exists, err := afero.Exists(fs, res.Output)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestGenerateRejectsInvalidEntity(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "tiles.bmp", tilesBMP(t), 0644))

	_, err := New(WithFs(fs), WithEntity("bad name")).Generate("tiles.bmp", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid entity name "bad name"`)

	var writeErr *WriteError
	assert.False(t, errors.As(err, &writeErr))

	entries, err := afero.ReadDir(fs, ".")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestGenerateResized(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "big.bmp", bmpBytes(t, 64, 32, nil), 0644))

	res, err := New(WithFs(fs), WithResize(&raster.Resize{Width: 16})).Generate("big.bmp", "")
	require.NoError(t, err)
	assert.Equal(t, addr.Plan{Height: 8, Width: 16, RowBits: 3, ColBits: 4}, res.Plan)
	assert.Equal(t, 129, res.Entries)
}

func TestGenerateMissingImage(t *testing.T) {
	fs := afero.NewMemMapFs()

	_, err := New(WithFs(fs)).Generate("missing.bmp", "")
	require.Error(t, err)

	var loadErr *raster.LoadError
	assert.ErrorAs(t, err, &loadErr)
	assert.ErrorIs(t, err, os.ErrNotExist)

	exists, err := afero.Exists(fs, "missing_rom.vhd")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGenerateEmptyImage(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "void.img", []byte("EMPTY"), 0644))

	_, err := New(WithFs(fs)).Generate("void.img", "")

	var dimErr *addr.InvalidDimensionError
	require.ErrorAs(t, err, &dimErr)
	assert.Equal(t, 0, dimErr.Width)

	exists, err := afero.Exists(fs, "void_rom.vhd")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGenerateReadOnlyDestination(t *testing.T) {
	base := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(base, "tiles.bmp", tilesBMP(t), 0644))
	fs := afero.NewReadOnlyFs(base)

	_, err := New(WithFs(fs)).Generate("tiles.bmp", "")
	require.Error(t, err)

	var writeErr *WriteError
	require.ErrorAs(t, err, &writeErr)
	assert.Equal(t, "tiles_rom.vhd", writeErr.Path)

	exists, err := afero.Exists(base, "tiles_rom.vhd")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGenerateOnDisk(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "brick.bmp")
	require.NoError(t, os.WriteFile(src, tilesBMP(t), 0644))

	require.NoError(t, Generate(src, ""))
	info, err := os.Stat(filepath.Join(dir, "brick_rom.vhd"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	err = Generate(filepath.Join(dir, "nope.bmp"), "")
	var loadErr *raster.LoadError
	assert.ErrorAs(t, err, &loadErr)
	assert.NoFileExists(t, filepath.Join(dir, "nope_rom.vhd"))
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		image, suffix, ext, want string
	}{
		{"brick.bmp", "_rom", "vhd", "brick_rom.vhd"},
		{"art/game_over.bmp", "_rom", "vhd", "art/game_over_rom.vhd"},
		{"a.b.bmp", "_rom", "vhd", "a.b_rom.vhd"},
		{"noext", "_rom", "vhd", "noext_rom.vhd"},
		{"brick.bmp", "_lut", "", "brick_lut"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, OutputPath(tt.image, tt.suffix, tt.ext), tt.image)
	}
}

func TestEntityName(t *testing.T) {
	assert.Equal(t, "brick_rom", EntityName("brick.bmp", "_rom"))
	assert.Equal(t, "game_over_rom", EntityName("/tmp/art/game over.bmp", "_rom"))
	assert.Equal(t, "img_8bit_rom", EntityName("8bit.png", "_rom"))
}

func TestParseHexToColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
	}{
		{"#f00", color.NRGBA{R: 0xff, A: 0xff}},
		{"#0f08", color.NRGBA{G: 0xff, A: 0x88}},
		{"#123456", color.NRGBA{R: 0x12, G: 0x34, B: 0x56, A: 0xff}},
		{"#12345678", color.NRGBA{R: 0x12, G: 0x34, B: 0x56, A: 0x78}},
	}

	for _, tt := range tests {
		c, err := parseHexToColor(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, c, tt.in)
	}

	for _, bad := range []string{"", "red", "#12", "#ggg", "#1234567"} {
		_, err := parseHexToColor(bad)
		assert.Error(t, err, bad)
	}
}
