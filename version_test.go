package ucpschema

import "testing"

func TestIsSupportedProfileVersion(t *testing.T) {
	ok, err := IsSupportedProfileVersion("0.1.0")
	if err != nil || !ok {
		t.Fatalf("IsSupportedProfileVersion(0.1.0) = %v, %v; want true, nil", ok, err)
	}

	ok, err = IsSupportedProfileVersion("9.9.9")
	if err != nil || ok {
		t.Fatalf("IsSupportedProfileVersion(9.9.9) = %v, %v; want false, nil", ok, err)
	}

	if _, err := IsSupportedProfileVersion("not-a-version"); err == nil {
		t.Fatalf("expected error for malformed version")
	}
}

func TestCodeFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, ExitSuccess},
		{&SchemaError{Message: "bad"}, ExitSchemaError},
		{&SchemaValidationError{}, ExitPayloadInvalid},
		{&IoError{Op: "fetch"}, ExitIoError},
		{&UsageError{Message: "bad flags"}, ExitSchemaError},
	}
	for _, c := range cases {
		if got := CodeFor(c.err); got != c.want {
			t.Errorf("CodeFor(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}
