package diagnosis

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, MsgNoURL, E(KindValidation, MsgNoURL, nil).Error())
	assert.Equal(t, "failed to open PDF: boom", E(KindDocument, "failed to open PDF", errors.New("boom")).Error())
	assert.Equal(t, "boom", E(KindRemoteModel, "", errors.New("boom")).Error())
}

func TestKindOf(t *testing.T) {
	base := E(KindPermission, MsgPermissionPage, nil)
	wrapped := fmt.Errorf("analyze: %w", base)

	assert.Equal(t, KindPermission, KindOf(wrapped))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
	assert.True(t, errors.Is(wrapped, base))
}

func TestPublicMessage(t *testing.T) {
	dl := E(KindDownload, "fetch", errors.New("status 404"))
	assert.Equal(t, MsgDownloadFailed, PublicMessage(dl))
	assert.Equal(t, MsgUnsupported, PublicMessage(E(KindUnsupported, MsgUnsupported, nil)))
}

func TestChartPolicy(t *testing.T) {
	assert.True(t, ChartAlways.AttachChart(true))
	assert.True(t, ChartAlways.AttachChart(false))
	assert.False(t, ChartUnlessReport.AttachChart(true))
	assert.True(t, ChartUnlessReport.AttachChart(false))
	assert.Equal(t, "chart_unless_report", ChartUnlessReport.String())
}
