package utils

import (
	"testing"

	"go.viam.com/test"
)

type decodeTarget struct {
	Name   string    `json:"name"`
	Width  int       `json:"width"`
	Center []float64 `json:"center"`
}

func TestDecodeAttributes(t *testing.T) {
	attrs := AttributeMap{
		"name":   "cam",
		"width":  640.0,
		"center": []interface{}{1.0, 2.0, 3.0},
	}
	test.That(t, attrs.Has("width"), test.ShouldBeTrue)
	test.That(t, attrs.Has("height"), test.ShouldBeFalse)

	out, err := DecodeAttributes[decodeTarget](attrs)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldResemble, decodeTarget{Name: "cam", Width: 640, Center: []float64{1, 2, 3}})

	attrs["hieght"] = 480
	_, err = DecodeAttributes[decodeTarget](attrs)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "hieght")

	_, err = DecodeAttributes[decodeTarget](AttributeMap{"width": "wide"})
	test.That(t, err, test.ShouldNotBeNil)

	_, err = DecodeAttributes[*decodeTarget](AttributeMap{})
	test.That(t, err, test.ShouldNotBeNil)
}
