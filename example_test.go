package carryover_test

import (
	"fmt"
	"strings"

	"github.com/scsphylo/carryover"
	"github.com/scsphylo/carryover/errors"
)

func ExamplePropagate() {
	stage1 := `<beast><siteModel id="sm" shape="@gammaShape"/></beast>`
	stage2 := `<beast><siteModel id="sm"><parameter name="shape">1.0</parameter></siteModel></beast>`
	table := "#MCMC samples\ngammaShape\tmean\t7.25\t0.4\ngammaShape\tmedian\t7.0\t0.4\n"

	res, err := carryover.Propagate(carryover.Sources{
		Stage1:    strings.NewReader(stage1),
		Stage2:    strings.NewReader(stage2),
		Estimates: strings.NewReader(table),
		Results:   strings.NewReader("out/calls_mean.vcf\n"),
	}, carryover.NewOptions())
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Println(res)
	// Output: <beast><siteModel id="sm"><parameter name="shape">7.25</parameter></siteModel></beast>
}

func ExamplePropagate_boundsViolation() {
	res, err := carryover.Propagate(carryover.Sources{
		Stage1:    strings.NewReader(`<beast><siteModel shape="@gammaShape"/></beast>`),
		Stage2:    strings.NewReader(`<beast/>`),
		Estimates: strings.NewReader("#MCMC samples\ngammaShape\tmean\t2.5\n"),
		Results:   strings.NewReader("calls_mean.vcf\n"),
	}, carryover.NewOptions())
	if v, ok := errors.AsBoundsViolation(err); ok {
		fmt.Println(v.ID, v.Value, *v.Lower)
		return
	}
	fmt.Println(res)
	// Output: gammaShape 2.5 6
}
