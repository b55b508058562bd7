package sweep

import (
	"math"
	"testing"
)

func TestParseCSVFloat64s(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		expected  []float64
		expectErr bool
	}{
		{"empty_string", "", nil, false},
		{"single_value", "1.5", []float64{1.5}, false},
		{"multiple_values", "0.1,0.25,0.5", []float64{0.1, 0.25, 0.5}, false},
		{"with_spaces", " 1.0 , 2.5 , 3.0 ", []float64{1.0, 2.5, 3.0}, false},
		{"integers", "1,2,3", []float64{1.0, 2.0, 3.0}, false},
		{"negative_values", "-1.5,-2.5", []float64{-1.5, -2.5}, false},
		{"scientific_notation", "1e-3,2e2", []float64{0.001, 200}, false},
		{"invalid_value", "1.0,abc,3.0", nil, true},
		{"empty_parts", "1.0,,3.0", []float64{1.0, 3.0}, false},
		{"trailing_comma", "1.0,2.0,", []float64{1.0, 2.0}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := ParseCSVFloat64s(tc.input)
			if tc.expectErr {
				if err == nil {
					t.Errorf("Expected error for input %q, got nil", tc.input)
				}
				return
			}
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
				return
			}
			if len(result) != len(tc.expected) {
				t.Errorf("Length mismatch: expected %d, got %d", len(tc.expected), len(result))
				return
			}
			for i, v := range result {
				if v != tc.expected[i] {
					t.Errorf("Value mismatch at index %d: expected %f, got %f", i, tc.expected[i], v)
				}
			}
		})
	}
}

func TestParseCSVInts(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		expected  []int
		expectErr bool
	}{
		{"empty_string", "", nil, false},
		{"single_value", "5", []int{5}, false},
		{"multiple_values", "3,5,10", []int{3, 5, 10}, false},
		{"with_spaces", " 1 , 2 , 3 ", []int{1, 2, 3}, false},
		{"negative_values", "-1,-2,-3", []int{-1, -2, -3}, false},
		{"invalid_float", "1.5", nil, true},
		{"invalid_string", "abc", nil, true},
		{"mixed_valid_invalid", "1,abc,3", nil, true},
		{"empty_parts", "1,,3", []int{1, 3}, false},
		{"zero", "0", []int{0}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := ParseCSVInts(tc.input)
			if tc.expectErr {
				if err == nil {
					t.Errorf("Expected error for input %q, got nil", tc.input)
				}
				return
			}
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
				return
			}
			if len(result) != len(tc.expected) {
				t.Errorf("Length mismatch: expected %d, got %d", len(tc.expected), len(result))
				return
			}
			for i, v := range result {
				if v != tc.expected[i] {
					t.Errorf("Value mismatch at index %d: expected %d, got %d", i, tc.expected[i], v)
				}
			}
		})
	}
}

func TestMeanStddev(t *testing.T) {
	testCases := []struct {
		name           string
		input          []float64
		expectedMean   float64
		expectedStddev float64
	}{
		{"empty_slice", []float64{}, 0, 0},
		{"single_value", []float64{5.0}, 5.0, 0},
		{"two_values", []float64{4.0, 6.0}, 5.0, math.Sqrt(2)},
		{"three_values", []float64{1.0, 2.0, 3.0}, 2.0, 1.0},
		{"identical_values", []float64{5.0, 5.0, 5.0}, 5.0, 0},
		{"negative_values", []float64{-1.0, -2.0, -3.0}, -2.0, 1.0},
		{"mixed_signs", []float64{-1.0, 0.0, 1.0}, 0.0, 1.0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mean, stddev := MeanStddev(tc.input)

			if math.Abs(mean-tc.expectedMean) > 1e-9 {
				t.Errorf("Mean mismatch: expected %f, got %f", tc.expectedMean, mean)
			}
			if math.Abs(stddev-tc.expectedStddev) > 1e-9 {
				t.Errorf("Stddev mismatch: expected %f, got %f", tc.expectedStddev, stddev)
			}
		})
	}
}
