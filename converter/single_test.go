package converter

import (
	"net"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntConverterRoundTrip(t *testing.T) {
	s, err := IntConverter{}.ToString(reflect.ValueOf(int32(-42)))
	require.NoError(t, err)
	assert.Equal(t, "-42", s)

	v, err := IntConverter{}.FromString("-42", reflect.TypeOf(int32(0)))
	require.NoError(t, err)
	assert.Equal(t, int32(-42), v.Interface())
}

func TestIntConverterOverflow(t *testing.T) {
	_, err := IntConverter{}.FromString("128", reflect.TypeOf(int8(0)))
	var ve *ValueError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "128", ve.Raw)
}

func TestUintConverterRejectsNegative(t *testing.T) {
	_, err := UintConverter{}.FromString("-1", reflect.TypeOf(uint(0)))
	var ve *ValueError
	require.ErrorAs(t, err, &ve)
}

func TestBoolConverterRejectsGarbage(t *testing.T) {
	_, err := BoolConverter{}.FromString("maybe", reflect.TypeOf(false))
	var ve *ValueError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Error(), `"maybe"`)
}

func TestFloatConverterShortestForm(t *testing.T) {
	s, err := FloatConverter{}.ToString(reflect.ValueOf(3.25))
	require.NoError(t, err)
	assert.Equal(t, "3.25", s)
}

func TestNamedStringType(t *testing.T) {
	type label string
	v, err := StringConverter{}.FromString("hot", reflect.TypeOf(label("")))
	require.NoError(t, err)
	assert.Equal(t, label("hot"), v.Interface())
}

func TestTimeConverterRoundTrip(t *testing.T) {
	in := time.Date(2024, 5, 17, 9, 30, 0, 125000000, time.UTC)
	s, err := TimeConverter{}.ToString(reflect.ValueOf(in))
	require.NoError(t, err)

	v, err := TimeConverter{}.FromString(s, timeType)
	require.NoError(t, err)
	assert.True(t, in.Equal(v.Interface().(time.Time)))
}

func TestBytesConverterBase64(t *testing.T) {
	s, err := BytesConverter{}.ToString(reflect.ValueOf([]byte("ping")))
	require.NoError(t, err)
	assert.Equal(t, "cGluZw==", s)

	v, err := BytesConverter{}.FromString(s, bytesType)
	require.NoError(t, err)
	assert.Equal(t, []byte("ping"), v.Interface())
}

func TestTextConverterFallback(t *testing.T) {
	ipType := reflect.TypeOf(net.IP{})
	require.True(t, TextConverter{}.CanConvert(ipType))

	s, err := TextConverter{}.ToString(reflect.ValueOf(net.ParseIP("10.0.0.1")))
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", s)

	v, err := TextConverter{}.FromString("10.0.0.1", ipType)
	require.NoError(t, err)
	assert.True(t, net.ParseIP("10.0.0.1").Equal(v.Interface().(net.IP)))
}
