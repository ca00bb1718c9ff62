package res

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypesCanonicalOrder(t *testing.T) {
	types := Types()
	require.Len(t, types, int(numTypes))
	for i, typ := range types {
		assert.Equal(t, Type(i), typ)
		assert.True(t, typ.Valid())
	}
	assert.Less(t, int(Attr), int(Drawable))
	assert.Less(t, int(String), int(Styleable))
}

func TestParseTypeRoundTrip(t *testing.T) {
	for _, typ := range Types() {
		parsed, err := ParseType(typ.String())
		require.NoError(t, err)
		assert.Equal(t, typ, parsed)
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		in      string
		want    Type
		wantErr bool
	}{
		{in: "string", want: String},
		{in: " Drawable ", want: Drawable},
		{in: "declare-styleable", want: Styleable},
		{in: "id", want: ID},
		{in: "widget", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseType(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTypeText(t *testing.T) {
	var typ Type
	require.NoError(t, typ.UnmarshalText([]byte("mipmap")))
	assert.Equal(t, Mipmap, typ)

	text, err := typ.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "mipmap", string(text))

	_, err = Type(-1).MarshalText()
	assert.Error(t, err)
	assert.Equal(t, "unknown", Type(99).String())
}

func TestFieldName(t *testing.T) {
	assert.Equal(t, "app_name", FieldName("app_name"))
	assert.Equal(t, "Theme_App_Dark", FieldName("Theme.App.Dark"))
	assert.Equal(t, "ic_launcher_round", FieldName("ic-launcher-round"))
	assert.Equal(t, "android_textColor", FieldName("android:textColor"))
}

func TestSplitQualified(t *testing.T) {
	pkg, bare := SplitQualified("android:textColor")
	assert.Equal(t, "android", pkg)
	assert.Equal(t, "textColor", bare)

	pkg, bare = SplitQualified("customFlag")
	assert.Empty(t, pkg)
	assert.Equal(t, "customFlag", bare)

	assert.True(t, IsFramework("android:textColor"))
	assert.False(t, IsFramework("com.example:textColor"))
	assert.False(t, IsFramework("textColor"))
}

func TestPackage(t *testing.T) {
	assert.Equal(t, "com/example/lib", PackageDir("com.example.lib"))

	assert.True(t, ValidPackage("com.example.lib"))
	assert.True(t, ValidPackage("a"))
	assert.False(t, ValidPackage(""))
	assert.False(t, ValidPackage("com..example"))
	assert.False(t, ValidPackage("com.1example"))
	assert.False(t, ValidPackage("com.ex-ample"))
}

func TestParseID(t *testing.T) {
	tests := []struct {
		in      interface{}
		want    int32
		wantErr bool
	}{
		{"0x7f010000", 0x7f010000, false},
		{" 16 ", 16, false},
		{"0xffffffff", -1, false},
		{int(0x01010098), 0x01010098, false},
		{int64(5), 5, false},
		{uint64(0x80000000), -0x80000000, false},
		{"0x100000000", 0, true},
		{"nope", 0, true},
		{3.5, 0, true},
	}
	for _, tt := range tests {
		got, err := IDFromValue(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "%v", tt.in)
			continue
		}
		require.NoError(t, err, "%v", tt.in)
		assert.Equal(t, tt.want, got, "%v", tt.in)
	}
}
