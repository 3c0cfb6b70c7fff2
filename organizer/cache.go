package organizer

import (
	"encoding/json"
	"os"
)

// Bump these when the parsed shapes change; stale caches are ignored.
const (
	pdfCacheVersion    = 2
	routesCacheVersion = 2
)

type fileStamp struct {
	Size  int64 `json:"size"`
	Mtime int64 `json:"mtime"`
}

func stampOf(path string) (fileStamp, bool) {
	st, err := os.Stat(path)
	if err != nil {
		return fileStamp{}, false
	}
	return fileStamp{Size: st.Size(), Mtime: st.ModTime().Unix()}, true
}

type pdfCacheFile struct {
	Meta struct {
		V int `json:"v"`
		fileStamp
	} `json:"meta"`
	Data *PDFMeta `json:"data"`
}

func pdfCachePath(pdfPath string) string { return pdfPath + ".vanorg_cache.json" }

func loadPDFCache(pdfPath string) *PDFMeta {
	raw, err := os.ReadFile(pdfCachePath(pdfPath))
	if err != nil {
		return nil
	}
	var c pdfCacheFile
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil
	}
	st, ok := stampOf(pdfPath)
	if !ok || c.Meta.V != pdfCacheVersion || c.Meta.fileStamp != st {
		return nil
	}
	if c.Data == nil || len(c.Data.Meta) == 0 {
		return nil
	}
	return c.Data
}

func savePDFCache(pdfPath string, m *PDFMeta) {
	st, ok := stampOf(pdfPath)
	if !ok {
		return
	}
	var c pdfCacheFile
	c.Meta.V = pdfCacheVersion
	c.Meta.fileStamp = st
	c.Data = m
	if raw, err := json.Marshal(c); err == nil {
		// Cache misses are never fatal, neither are write failures.
		_ = os.WriteFile(pdfCachePath(pdfPath), raw, 0o644)
	}
}

type routesCacheData struct {
	Routes  []Route           `json:"routes"`
	WaveMap map[string]string `json:"wave_map"`
}

type routesCacheFile struct {
	Meta struct {
		V         int   `json:"v"`
		PDFSize   int64 `json:"pdf_size"`
		PDFMtime  int64 `json:"pdf_mtime"`
		XlsxSize  int64 `json:"xlsx_size"`
		XlsxMtime int64 `json:"xlsx_mtime"`
	} `json:"meta"`
	Data *routesCacheData `json:"data"`
}

func routesCachePath(xlsxPath string) string { return xlsxPath + ".vanorg_routes_cache.json" }

func loadRoutesCache(pdfPath, xlsxPath string) *routesCacheData {
	raw, err := os.ReadFile(routesCachePath(xlsxPath))
	if err != nil {
		return nil
	}
	var c routesCacheFile
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil
	}
	pst, pok := stampOf(pdfPath)
	xst, xok := stampOf(xlsxPath)
	if !pok || !xok || c.Meta.V != routesCacheVersion {
		return nil
	}
	if c.Meta.PDFSize != pst.Size || c.Meta.PDFMtime != pst.Mtime {
		return nil
	}
	if c.Meta.XlsxSize != xst.Size || c.Meta.XlsxMtime != xst.Mtime {
		return nil
	}
	if c.Data == nil || len(c.Data.Routes) == 0 {
		return nil
	}
	return c.Data
}

func saveRoutesCache(pdfPath, xlsxPath string, data *routesCacheData) {
	pst, pok := stampOf(pdfPath)
	xst, xok := stampOf(xlsxPath)
	if !pok || !xok {
		return
	}
	var c routesCacheFile
	c.Meta.V = routesCacheVersion
	c.Meta.PDFSize, c.Meta.PDFMtime = pst.Size, pst.Mtime
	c.Meta.XlsxSize, c.Meta.XlsxMtime = xst.Size, xst.Mtime
	c.Data = data
	if raw, err := json.Marshal(c); err == nil {
		_ = os.WriteFile(routesCachePath(xlsxPath), raw, 0o644)
	}
}
