package encoding

import (
	"encoding"
	"errors"
	"testing"
)

// Assert interface implemented.
var (
	_ encoding.TextMarshaler   = (*HexEncoding)(nil)
	_ encoding.TextUnmarshaler = (*HexEncoding)(nil)
)

type unmarshalTestCase struct {
	name, input string

	expectRecords int
	expectErr     error
}

func TestHexEncoder_UnmarshalText(t *testing.T) {
	t.Parallel()

	tcs := []unmarshalTestCase{
		{
			name:      "empty",
			input:     "",
			expectErr: errEmpty,
		},
		{
			name:      "eof record",
			input:     ":000000000001ff",
			expectErr: errEmpty,
		},
		{
			name:      "eof record with newlines",
			input:     "\n\n:000000000001ff\n\n",
			expectErr: errEmpty,
		},
		{
			name:      "invalid bytes",
			input:     ":invalid",
			expectErr: errInvalidHex,
		},
		{
			name:      "nonsense",
			input:     "u wot mate",
			expectErr: errInvalidHex,
		},
		{
			name:          "data record",
			input:         ":0d0000000000464c5549442050524f46494c454e\n",
			expectRecords: 1,
		},
		{
			name:          "data records",
			input:         ":0d0000000000464c5549442050524f46494c454e\n:0d0000000000464c5549442050524f46494c454e\n",
			expectRecords: 2,
		},
		{
			name:      "too short",
			input:     ":0",
			expectErr: errInvalidHex,
		},
		{
			name:      "too short",
			input:     ":FF0000000000",
			expectErr: errInvalidHex,
		},
	}

	for _, tc := range tcs {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			records, err := unmarshal(tc)

			t.Logf("have: %q, got: %+v, err: %v", tc.input, records, err)

			switch {
			case tc.expectErr != nil && err != nil:
				if !errors.Is(err, tc.expectErr) {
					t.Errorf("Unexpected error: got: %s, want: %s",
						err.Error(), tc.expectErr.Error())
				}
			case tc.expectErr != nil && err == nil:
				t.Errorf("Expected error: %s", tc.expectErr.Error())
			case tc.expectErr == nil && err != nil:
				t.Errorf("Unexpected error: got: %v", err)
			case len(records) != tc.expectRecords:
				t.Errorf("Unexpected records: want: %d, got: %d", tc.expectRecords, len(records))
			}
		})
	}
}

type marshalTestCase struct {
	name  string
	input []Record

	expectOutput string
	expectErr    error
}

func TestHexEncoder_MarshalText(t *testing.T) {
	t.Parallel()

	tcs := []marshalTestCase{
		{
			name:         "nil",
			input:        nil,
			expectOutput: ":000000000001ff\n",
		},
		{
			name: "fixed string",
			input: []Record{
				{
					Addr: 0x00000000,
					Data: []byte("FLUID PROFILE"),
				},
			},
			expectOutput: ":0d0000000000464c5549442050524f46494c454e\n:000000000001ff\n",
		},
	}

	for _, tc := range tcs {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			output, err := marshal(tc)

			t.Logf("have: %+v, got: %q, err: %v", tc.input, output, err)

			switch {
			case tc.expectErr != nil && err != nil:
				if !errors.Is(err, tc.expectErr) {
					t.Errorf("Unexpected error: got: %s, want: %s",
						err.Error(), tc.expectErr.Error())
				}
			case tc.expectErr != nil && err == nil:
				t.Errorf("Expected error: %s", tc.expectErr.Error())
			case tc.expectErr == nil && err != nil:
				t.Errorf("Unexpected error: got: %v", err)
			case tc.name == "nil":
				if tc.expectOutput != output {
					t.Errorf("got: %q, want: %q", output, tc.expectOutput)
				}
			default:
				// Round-trip instead of pinning an exact checksum string.
				decoded := HexEncoding{}
				if err := decoded.UnmarshalText([]byte(output)); err != nil {
					t.Fatalf("round-trip: %s", err)
				}

				if len(decoded.records) != len(tc.input) {
					t.Fatalf("round-trip: want: %d records, got: %d", len(tc.input), len(decoded.records))
				}

				for i := range tc.input {
					if decoded.records[i].Addr != tc.input[i].Addr {
						t.Errorf("addr: want: %#x, got: %#x", tc.input[i].Addr, decoded.records[i].Addr)
					}

					if string(decoded.records[i].Data) != string(tc.input[i].Data) {
						t.Errorf("data: want: %q, got: %q", tc.input[i].Data, decoded.records[i].Data)
					}
				}
			}
		})
	}
}

func marshal(tc marshalTestCase) (string, error) {
	encoder := NewHexEncoding(tc.input)
	out, err := encoder.MarshalText()

	return string(out), err
}

func unmarshal(tc unmarshalTestCase) ([]Record, error) {
	decoder := HexEncoding{}
	err := decoder.UnmarshalText([]byte(tc.input))

	return decoder.Records(), err
}
