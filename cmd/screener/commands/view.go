package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/tse-screener/internal/contracts"
	"github.com/wonny/tse-screener/internal/viewer"
	"github.com/wonny/tse-screener/pkg/logger"
)

// viewCmd represents the view command
var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "スナップショットを表示",
	Long: `Browses a saved snapshot in the terminal.

Modes:
  (default)        ranked result list with the change distribution
  --list           available snapshot files
  --code C         detail of one issue
  --sectors        sector ranking (騰落ランキング)
  --movers SECTOR  top / bottom issues of one sector

Example:
  go run ./cmd/screener view
  go run ./cmd/screener view --market Growth --min-turnover 100 --preset 4
  go run ./cmd/screener view --date 2026-10-14 --code 7203
  go run ./cmd/screener view --sectors --market Prime`,
	RunE: runView,
}

var (
	viewDate        string
	viewList        bool
	viewMarket      string
	viewSectors     []string
	viewMinTurnover float64
	viewChgMin      float64
	viewChgMax      float64
	viewPreset      string
	viewTop         int
	viewCode        string
	viewSectorRank  bool
	viewMovers      string
	viewHistogram   bool
)

func init() {
	rootCmd.AddCommand(viewCmd)

	viewCmd.Flags().StringVar(&viewDate, "date", "latest", "snapshot date (YYYY-MM-DD or latest)")
	viewCmd.Flags().BoolVar(&viewList, "list", false, "list snapshot files")
	viewCmd.Flags().StringVar(&viewMarket, "market", "", "market (Prime|Standard|Growth or label); empty for all")
	viewCmd.Flags().StringSliceVar(&viewSectors, "sector", nil, "sector filter (repeatable)")
	viewCmd.Flags().Float64Var(&viewMinTurnover, "min-turnover", 0, "minimum turnover in millions of yen")
	viewCmd.Flags().Float64Var(&viewChgMin, "chg-min", viewer.DefaultChgMin, "minimum change_pct")
	viewCmd.Flags().Float64Var(&viewChgMax, "chg-max", viewer.DefaultChgMax, "maximum change_pct")
	viewCmd.Flags().StringVar(&viewPreset, "preset", "", "sort preset (number or label); default the first")
	viewCmd.Flags().IntVar(&viewTop, "top", 0, "rows to show; default VIEWER_TOP_N")
	viewCmd.Flags().StringVar(&viewCode, "code", "", "show the detail of one code")
	viewCmd.Flags().BoolVar(&viewSectorRank, "sectors", false, "show the sector ranking")
	viewCmd.Flags().StringVar(&viewMovers, "movers", "", "show top/bottom 10 of a sector")
	viewCmd.Flags().BoolVar(&viewHistogram, "hist", true, "print the change_pct distribution under the list")
}

func runView(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	store := viewer.NewStore(cfg.Pipeline.OutputDir, cfg.Pipeline.OutputPrefix, log)

	if viewList {
		return printFiles(store)
	}

	snap, err := store.Open(viewDate)
	if err != nil {
		return fmt.Errorf("open snapshot: %w", err)
	}

	switch {
	case viewCode != "":
		detail, err := viewer.FindDetail(snap.Rows, viewCode)
		if err != nil {
			return err
		}
		printDetail(detail)
		return nil

	case viewSectorRank:
		printSectorSummary(snap, viewer.SectorSummary(viewer.ByMarket(snap.Rows, viewMarket)))
		return nil

	case viewMovers != "":
		rows := viewer.ByMarket(snap.Rows, viewMarket)
		top, bottom := viewer.SectorMovers(rows, viewMovers, 10)
		if len(top) == 0 {
			return fmt.Errorf("%w: %s", viewer.ErrSectorNotFound, viewMovers)
		}
		PrintHeader(fmt.Sprintf("%s  %s", snap.File.DateLabel, viewMovers))
		fmt.Println("🔺 上昇 Top 10")
		printRows(top)
		fmt.Println()
		fmt.Println("🔻 下落 Bottom 10")
		printRows(bottom)
		return nil
	}

	presets, err := viewer.LoadPresets(cfg.Viewer.PresetsFile)
	if err != nil {
		return err
	}
	preset, err := viewer.SelectPreset(presets, viewPreset)
	if err != nil {
		return err
	}
	topN := viewTop
	if topN <= 0 {
		topN = cfg.Viewer.DefaultTopN
	}

	query := viewer.Query{
		Filter: viewer.Filter{
			Market:      viewMarket,
			Sectors:     viewSectors,
			MinTurnover: viewMinTurnover,
			ChgMin:      viewChgMin,
			ChgMax:      viewChgMax,
		},
		Preset: preset,
		TopN:   topN,
	}
	result := query.Run(snap.Rows)

	order := "↓ 降順"
	if preset.Ascending {
		order = "↑ 昇順"
	}
	PrintHeader(fmt.Sprintf("%s  %s", snap.File.DateLabel, preset.Label))
	PrintKeyValue("説明", preset.Description, 8)
	PrintKeyValue("ソート", fmt.Sprintf("%s %s", result.SortColumn, order), 8)
	PrintKeyValue("表示", fmt.Sprintf("%d / %d 件 (総銘柄数 %d)", len(result.Rows), result.Matched, len(snap.Rows)), 8)
	PrintSeparator()

	if result.Matched == 0 {
		PrintWarning("フィルター条件に一致する銘柄がありません。")
		return nil
	}
	printRows(result.Rows)

	if viewHistogram {
		fmt.Println()
		fmt.Println("change_pct 分布 (±10% クリップ)")
		printHistogram(result.Histogram)
	}
	return nil
}

func printFiles(store *viewer.Store) error {
	files, err := store.Files()
	if err != nil {
		return err
	}
	if len(files) == 0 {
		PrintWarning("データがありません。")
		return nil
	}

	cols := []Column{{"Date", 12, false}, {"File", 28, false}, {"Size", 10, true}, {"Written", 16, false}}
	PrintTableHeader(cols)
	now := time.Now()
	for _, f := range files {
		PrintTableRow(cols, []string{f.DateLabel, f.Name, viewer.FormatSize(f.Size), viewer.FormatAge(f.ModTime, now)})
	}
	return nil
}

var rowColumns = []Column{
	{"Code", 5, false},
	{"Name", 20, false},
	{"Sector", 12, false},
	{"Close", 9, true},
	{"Chg%", 8, true},
	{"DoD%", 8, true},
	{"Range%", 7, true},
	{"Pos", 5, true},
	{"Wick", 5, true},
	{"C/VWAP", 6, true},
	{"売買代金", 10, true},
	{"Rank", 5, true},
	{"Sec", 7, true},
	{"vsSec", 7, true},
}

func printRows(rows []contracts.SnapshotRow) {
	PrintTableHeader(rowColumns)
	for _, r := range rows {
		PrintTableRow(rowColumns, []string{
			r.Code,
			r.CompanyName,
			r.Sector,
			viewer.FormatPrice(r.Close),
			viewer.FormatPct(r.ChangePct),
			viewer.FormatOptionalPct(r.DayOverDayPct),
			strconv.FormatFloat(r.RangePct, 'f', 2, 64),
			strconv.FormatFloat(r.RangePosition, 'f', 2, 64),
			strconv.FormatFloat(r.UpperWickRatio, 'f', 2, 64),
			strconv.FormatFloat(r.CloseToVWAP, 'f', 3, 64),
			viewer.FormatTurnover(r.TurnoverMillions),
			strconv.Itoa(r.OverallRank),
			fmt.Sprintf("%d/%d", r.SectorRank, r.SectorCount),
			viewer.FormatPct(r.VsSector),
		})
	}
}

func printDetail(d viewer.Detail) {
	PrintHeader(fmt.Sprintf("%s　%s", d.Code, d.CompanyName))
	fmt.Printf("  %s ／ %s\n", d.Market, d.Sector)
	PrintSeparator()

	fmt.Println("💴 価格")
	PrintKeyValue("始値", viewer.FormatPrice(d.Open), 12)
	PrintKeyValue("高値", viewer.FormatPrice(d.High), 12)
	PrintKeyValue("安値", viewer.FormatPrice(d.Low), 12)
	PrintKeyValue("終値", fmt.Sprintf("%s (%s)", viewer.FormatPrice(d.Close), viewer.FormatPct(d.ChangePct)), 12)
	if d.PrevClose.Valid {
		PrintKeyValue("前日終値", fmt.Sprintf("%s  前日比 %s", viewer.FormatPrice(d.PrevClose.Value), viewer.FormatOptionalPct(d.DayOverDayPct)), 12)
	}
	PrintSeparator()

	vwapState := "VWAP割れ"
	if d.AboveVWAP {
		vwapState = "VWAP上"
	}
	fmt.Println("💹 VWAP・売買代金")
	PrintKeyValue("VWAP", viewer.FormatPrice(d.VWAPApprox), 12)
	PrintKeyValue("終値/VWAP", fmt.Sprintf("%.3f  %s", d.CloseToVWAP, vwapState), 12)
	PrintKeyValue("売買代金", viewer.FormatTurnover(d.TurnoverMillions)+" 百万円", 12)
	PrintKeyValue("出来高", viewer.FormatVolume(d.Volume), 12)
	PrintSeparator()

	wick := "通常"
	if d.WickPressure {
		wick = "売り圧力あり"
	}
	fmt.Println("🕯️ ローソク足指標")
	PrintKeyValue("振れ幅", fmt.Sprintf("%.2f%%", d.RangePct), 12)
	PrintKeyValue("レンジ位置", fmt.Sprintf("%.3f  %s", d.RangePosition, d.RangeBand), 12)
	PrintKeyValue("上ヒゲ比", fmt.Sprintf("%.3f  %s", d.UpperWickRatio, wick), 12)
	PrintSeparator()

	fmt.Println("🏭 セクター相対")
	PrintKeyValue("全体順位", viewer.FormatVolume(int64(d.OverallRank)), 12)
	PrintKeyValue("セクター内", fmt.Sprintf("%d／%d", d.SectorRank, d.SectorCount), 12)
	PrintKeyValue("セクター内%", fmt.Sprintf("%.1f%%", d.SectorPercentile*100), 12)
	PrintKeyValue("vsセクター", viewer.FormatPct(d.VsSector), 12)
	PrintDoubleSeparator()
}

func printSectorSummary(snap *viewer.Snapshot, stats []viewer.SectorStat) {
	PrintHeader(fmt.Sprintf("%s  セクター騰落ランキング", snap.File.DateLabel))

	cols := []Column{
		{"順位", 4, true}, {"セクター", 20, false}, {"銘柄数", 6, true}, {"上昇", 5, true}, {"下落", 5, true},
		{"勝率", 6, true}, {"平均", 7, true}, {"中央値", 7, true}, {"最大", 7, true}, {"最小", 7, true},
		{"標準偏差", 8, true}, {"売買代金", 12, true},
	}
	PrintTableHeader(cols)
	for _, s := range stats {
		std := "-"
		if s.StdDev.Valid {
			std = strconv.FormatFloat(s.StdDev.Value, 'f', 2, 64)
		}
		sector := s.Sector
		if sector == "" {
			sector = "(未分類)"
		}
		PrintTableRow(cols, []string{
			strconv.Itoa(s.Rank),
			sector,
			strconv.Itoa(s.Count),
			strconv.Itoa(s.Up),
			strconv.Itoa(s.Down),
			fmt.Sprintf("%.1f%%", s.WinRate),
			fmt.Sprintf("%+.2f", s.Mean),
			fmt.Sprintf("%+.2f", s.Median),
			fmt.Sprintf("%+.2f", s.Max),
			fmt.Sprintf("%+.2f", s.Min),
			std,
			viewer.FormatTurnover(s.TotalTurnover),
		})
	}
}

func printHistogram(bins []viewer.Bin) {
	peak := 0
	for _, b := range bins {
		peak = max(peak, b.Count)
	}
	for _, b := range bins {
		fmt.Printf("  %s %5d %s\n", padLeft(b.Label(), 12), b.Count, bar(b.Count, peak, 40))
	}
}
