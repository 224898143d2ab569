package contracts

// Pipeline Stage 정의 (SSOT)
// 모든 로그와 진행 메시지에서 이 상수를 사용해야 함
//
// 파이프라인 흐름:
//   S1 → S2 → S3 → S4
//   Universe  Quotes  Metrics  Snapshot

// Stage represents a pipeline stage
type Stage string

const (
	// StageUniverse S1: 상장 종목 마스터에서 대상 종목 확정
	// 책임: JPX 마스터 리스트 취득, 시장 구분 필터, 티커 생성
	// 위치: internal/s1_universe/
	StageUniverse Stage = "S1_UNIVERSE"

	// StageQuotes S2: 일봉 시세 배치 취득
	// 책임: 배치 분할, 배치 실패 시 백오프, 종목별 Resolved/Skipped 판정
	// 위치: internal/s2_quotes/
	StageQuotes Stage = "S2_QUOTES"

	// StageMetrics S3: 파생 지표 계산
	// 책임: 종목 조인, 등락률/레인지/VWAP, 전체·섹터 순위
	// 위치: internal/s3_metrics/
	StageMetrics Stage = "S3_METRICS"

	// StageSnapshot S4: 일자별 CSV 스냅샷 저장
	// 책임: BOM 포함 UTF-8 CSV, 선택적 parquet/DB 아카이브
	// 위치: internal/s4_snapshot/
	StageSnapshot Stage = "S4_SNAPSHOT"
)

// String returns the stage name
func (s Stage) String() string {
	return string(s)
}

// ShortName returns abbreviated stage name (e.g., "S1", "S2")
func (s Stage) ShortName() string {
	switch s {
	case StageUniverse:
		return "S1"
	case StageQuotes:
		return "S2"
	case StageMetrics:
		return "S3"
	case StageSnapshot:
		return "S4"
	default:
		return "UNKNOWN"
	}
}

// AllStages returns all pipeline stages in order
func AllStages() []Stage {
	return []Stage{
		StageUniverse,
		StageQuotes,
		StageMetrics,
		StageSnapshot,
	}
}

// StageResult records the input/output counts of one stage for the run summary
type StageResult struct {
	Stage       Stage  `json:"stage"`
	InputCount  int    `json:"input_count"`
	OutputCount int    `json:"output_count"`
	Duration    int64  `json:"duration_ms"`
	Error       string `json:"error,omitempty"`
}
