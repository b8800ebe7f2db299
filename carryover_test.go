package carryover_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/scsphylo/carryover"
	coerrors "github.com/scsphylo/carryover/errors"
	"github.com/scsphylo/carryover/internal/tagdict"
)

const stage1XML = `<?xml version="1.0" encoding="UTF-8" standalone="no"?>
<beast version="2.6">
    <state id="state">
        <parameter id="shapeParam" lower="0.0">1.0</parameter>
        <parameter id="ado" lower="0.0" upper="1.0">0.1</parameter>
    </state>
    <distribution id="likelihood">
        <rawReadCountsModel id="rrc" adoRate="@ado">
            <nucReadCountsModel id="nrc" shapeCtrl1="@shapeParam"/>
        </rawReadCountsModel>
        <siteModel id="sm" shape="@gammaShape"/>
    </distribution>
</beast>
`

const stage2XML = `<?xml version="1.0" encoding="UTF-8" standalone="no"?>
<beast version="2.6">
    <!-- stage 2: parameters are fixed to the stage-1 estimates -->
    <state id="state">
        <tree id="tree" treeFileName="placeholder.trees"/>
        <parameter id="ado">0.0</parameter>
    </state>
    <rawReadCountsModel id="rrc" adoRate="placeholder">
        <adoRate>0.0</adoRate>
        <nucReadCountsModel shapeCtrl1="placeholder">
            <shapeCtrl1>0.0</shapeCtrl1>
        </nucReadCountsModel>
    </rawReadCountsModel>
</beast>
`

const estimatesLog = `# summary of stage-1 samples
#MCMC samples
shapeParam	mean	7.5	0.2
shapeParam	median	7.4	0.2
ado	mean	0.05	0.01
ado	median	0.04	0.01
gammaShape	mean	8.0	0.5
# end
`

func TestPropagateShapeCtrl1Scenario(t *testing.T) {
	res, err := carryover.Propagate(carryover.Sources{
		Stage1:    strings.NewReader(stage1XML),
		Stage2:    strings.NewReader(stage2XML),
		Estimates: strings.NewReader(estimatesLog),
		Results:   strings.NewReader("calls_mean.vcf\n"),
	}, carryover.NewOptions())
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(res.String()))
	assert.Equal(t, "7.5", doc.FindElement("//nucReadCountsModel/shapeCtrl1").Text())
	assert.Equal(t, "0.05", doc.FindElement("//rawReadCountsModel/adoRate").Text())
	assert.Equal(t, "0.05", doc.FindElement("//state/parameter[@id='ado']").Text())
	assert.Equal(t, "placeholder.trees", doc.FindElement("//tree").SelectAttrValue("treeFileName", ""))
	assert.Contains(t, res.String(), "<!-- stage 2: parameters are fixed to the stage-1 estimates -->")

	assert.Equal(t, carryover.Report{
		EstimateType: "mean",
		Resolved:     5,
		Estimates:    3,
		Substituted:  3,
		TreeRefs:     0,
		StateParams:  1,
	}, res.Report)
}

func TestPropagateMedian(t *testing.T) {
	res, err := carryover.Propagate(carryover.Sources{
		Stage1:    strings.NewReader(stage1XML),
		Stage2:    strings.NewReader(stage2XML),
		Estimates: strings.NewReader(estimatesLog),
		Results:   strings.NewReader("trees.log\ncalls_median.vcf\n"),
	}, carryover.NewOptions())
	require.NoError(t, err)
	assert.Equal(t, "median", res.Report.EstimateType)
	assert.Contains(t, res.String(), "<shapeCtrl1>7.4</shapeCtrl1>")
	assert.Contains(t, res.String(), "<adoRate>0.04</adoRate>")
}

func TestPropagateBoundsViolation(t *testing.T) {
	stage1 := `<beast><siteModel shape="@gammaShape"/></beast>`
	_, err := carryover.Propagate(carryover.Sources{
		Stage1:    strings.NewReader(stage1),
		Stage2:    strings.NewReader(`<beast/>`),
		Estimates: strings.NewReader("#MCMC samples\ngammaShape\tmean\t5.9\n"),
		Results:   strings.NewReader("x_mean.vcf\n"),
	}, carryover.NewOptions())

	v, ok := coerrors.AsBoundsViolation(err)
	require.True(t, ok, "want bounds violation, got %v", err)
	assert.Equal(t, "gammaShape", v.ID)
	assert.Equal(t, 5.9, v.Value)
	require.NotNil(t, v.Lower)
	assert.Equal(t, 6.0, *v.Lower)
	assert.Nil(t, v.Upper)
}

func TestPropagateAbsentEstimatesSubstituteNothing(t *testing.T) {
	stage2 := `<beast><state><parameter id="ado">0.0</parameter></state></beast>`
	res, err := carryover.Propagate(carryover.Sources{
		Stage1: strings.NewReader(stage1XML),
		Stage2: strings.NewReader(stage2),
	}, carryover.NewOptions())
	require.NoError(t, err)
	assert.Empty(t, res.Report.EstimateType)
	assert.Zero(t, res.Report.Estimates)
	assert.Equal(t, stage2, res.String())
}

func TestPropagateAbsentEstimatesWithPlaceholderFails(t *testing.T) {
	_, err := carryover.Propagate(carryover.Sources{
		Stage1:  strings.NewReader(stage1XML),
		Stage2:  strings.NewReader(stage2XML),
		Results: strings.NewReader("calls_mean.vcf\n"),
	}, carryover.NewOptions())
	m, ok := coerrors.AsMissingEstimate(err)
	require.True(t, ok, "want missing estimate, got %v", err)
	assert.Equal(t, "ado", m.ID)
}

func TestPropagateCustomDictionary(t *testing.T) {
	dict, err := tagdict.Load(strings.NewReader(`
structural:
  - tag: clockModel
    children: [clock.rate]
`))
	require.NoError(t, err)

	res, err := carryover.Propagate(carryover.Sources{
		Stage1:    strings.NewReader(`<beast><clockModel clock.rate="@rate"/><siteModel shape="@s"/></beast>`),
		Stage2:    strings.NewReader(`<beast><clockModel><parameter name="clock.rate">1.0</parameter></clockModel></beast>`),
		Estimates: strings.NewReader("#MCMC samples\nrate\tmean\t0.002\ns\tmean\t1.0\n"),
		Results:   strings.NewReader("a_mean.vcf"),
	}, carryover.NewOptions().WithDictionary(dict))
	require.NoError(t, err)
	assert.Equal(t, `<beast><clockModel><parameter name="clock.rate">0.002</parameter></clockModel></beast>`, res.String())
	assert.Equal(t, 1, res.Report.Resolved, "siteModel is not structural in the custom dictionary")
}

func TestPropagateLogsPhases(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	_, err := carryover.Propagate(carryover.Sources{
		Stage1:    strings.NewReader(stage1XML),
		Stage2:    strings.NewReader(stage2XML),
		Estimates: strings.NewReader(estimatesLog),
		Results:   strings.NewReader("calls_mean.vcf\n"),
	}, carryover.NewOptions().WithLogger(zap.New(core)))
	require.NoError(t, err)

	var msgs []string
	for _, e := range logs.All() {
		msgs = append(msgs, e.Message)
	}
	assert.Equal(t, []string{
		"stage-1 references resolved",
		"estimates extracted",
		"stage-2 template updated",
	}, msgs)
}

func TestOptionsValidate(t *testing.T) {
	require.NoError(t, carryover.NewOptions().Validate())
	require.Error(t, carryover.NewOptions().WithResultsKey("").Validate())
}

func writeFixtures(t *testing.T, dir string) carryover.Inputs {
	t.Helper()
	files := map[string]string{
		"stage1.xml":    stage1XML,
		"stage2.xml":    stage2XML,
		"estimates.log": estimatesLog,
		"results.txt":   "calls_mean.vcf\n",
		"mcc.trees":     "#NEXUS\n",
	}
	for name, data := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(data), 0o600))
	}
	return carryover.Inputs{
		Template1: filepath.Join(dir, "stage1.xml"),
		Template2: filepath.Join(dir, "stage2.xml"),
		Estimates: filepath.Join(dir, "estimates.log"),
		Results:   filepath.Join(dir, "results.txt"),
		Tree:      filepath.Join(dir, "mcc.trees"),
		Out:       filepath.Join(dir, "out.xml"),
	}
}

func TestRunFilesAndWriteFile(t *testing.T) {
	dir := t.TempDir()
	in := writeFixtures(t, dir)

	res, err := carryover.RunFiles(in, carryover.NewOptions())
	require.NoError(t, err)
	require.NoError(t, carryover.WriteFile(in.Out, res))

	data, err := os.ReadFile(in.Out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `treeFileName="`+in.Tree+`"`)
	assert.Contains(t, string(data), "<shapeCtrl1>7.5</shapeCtrl1>")
	assert.Equal(t, 1, res.Report.TreeRefs)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), "temporary file %s left behind", e.Name())
	}

	var buf bytes.Buffer
	_, err = res.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, string(data), buf.String())
}

func TestRunFilesMissingInputs(t *testing.T) {
	dir := t.TempDir()
	in := writeFixtures(t, dir)
	in.Template1 = filepath.Join(dir, "absent1.xml")
	in.Tree = filepath.Join(dir, "absent.trees")

	_, err := carryover.RunFiles(in, carryover.NewOptions())
	missing, ok := coerrors.AsMissingInputs(err)
	require.True(t, ok, "want missing input errors, got %v", err)
	require.Len(t, missing, 2)
	assert.Equal(t, "tree", missing[0].Flag)
	assert.Equal(t, in.Tree, missing[0].Path)
	assert.Equal(t, "template1", missing[1].Flag)
	assert.Equal(t, in.Template1, missing[1].Path)
}

func TestRunFilesDuplicateStructuralTag(t *testing.T) {
	dir := t.TempDir()
	in := writeFixtures(t, dir)
	dup := `<beast>
    <rawReadCountsModel id="a"/>
    <rawReadCountsModel id="b"/>
</beast>`
	require.NoError(t, os.WriteFile(in.Template2, []byte(dup), 0o600))

	res, err := carryover.RunFiles(in, carryover.NewOptions())
	assert.Nil(t, res)
	d, ok := coerrors.AsDuplicateNode(err)
	require.True(t, ok, "want duplicate node error, got %v", err)
	assert.Equal(t, "rawReadCountsModel", d.Tag)
}

func TestInputsValidateOptionalTree(t *testing.T) {
	dir := t.TempDir()
	in := writeFixtures(t, dir)
	in.Tree = ""
	require.NoError(t, in.Validate())

	in.Out = ""
	missing, ok := coerrors.AsMissingInputs(in.Validate())
	require.True(t, ok)
	require.Len(t, missing, 1)
	assert.Equal(t, "out", missing[0].Flag)
	assert.Equal(t, "[missing-input] --out is required", missing[0].Error())
}
