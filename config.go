package omix

import (
	"io/ioutil"

	"go-ml.dev/pkg/zorros"
	"gopkg.in/yaml.v3"

	"go-ml.dev/pkg/omix/nn"
	"go-ml.dev/pkg/omix/omics"
)

/*
Config is the run configuration the external collaborator hands to the
core: data location and shaping flags, the downstream task, the network
tags and hyper-parameters, and the compute placement. Derived values
(class counts, value ranges) never appear here.
*/
type Config struct {
	DataRoot      string `yaml:"data_root"`
	OmicsMode     string `yaml:"omics_mode"`      // abc | a | b | c
	UseSampleList bool   `yaml:"use_sample_list"` // read sample_list.tsv
	AddChannel    bool   `yaml:"add_channel"`
	ChSeparate    bool   `yaml:"ch_separate"` // split modality B by chromosome
	ChromosomeMap string `yaml:"chromosome_map"`
	ADim          int    `yaml:"a_dim"` // configured widths, 0 derives from data
	BDim          int    `yaml:"b_dim"`
	CDim          int    `yaml:"c_dim"`

	DownstreamTask string  `yaml:"downstream_task"` // classification | regression | survival | multitask | alltask
	TaskNum        int     `yaml:"task_num"`
	SurvivalLoss   string  `yaml:"survival_loss"`
	TimeNum        int     `yaml:"time_num"`
	SurvivalTMax   float64 `yaml:"survival_t_max"`
	StratifyLabel  bool    `yaml:"stratify_label"`

	NetDown    string  `yaml:"net_down"` // downstream head tag
	NormType   string  `yaml:"norm_type"`
	LeakySlope float64 `yaml:"leaky_slope"`
	DropoutP   float64 `yaml:"dropout_p"`
	LatentDim  int     `yaml:"latent_dim"`
	Dim1       int     `yaml:"dim_1"`
	Dim2       int     `yaml:"dim_2"`
	Dim3       int     `yaml:"dim_3"`
	Dim1A      int     `yaml:"dim_1_a"` // per-modality widths, 0 keeps dim_1/dim_2
	Dim2A      int     `yaml:"dim_2_a"`
	Dim1B      int     `yaml:"dim_1_b"`
	Dim2B      int     `yaml:"dim_2_b"`
	Dim1C      int     `yaml:"dim_1_c"`
	Dim2C      int     `yaml:"dim_2_c"`
	HeadDim1   int     `yaml:"head_dim_1"`
	HeadDim2   int     `yaml:"head_dim_2"`
	LayerNum   int     `yaml:"layer_num"`

	InitType string  `yaml:"init_type"`
	InitGain float64 `yaml:"init_gain"`
	Seed     uint64  `yaml:"seed"`
	Devices  []int   `yaml:"device_ids"`
}

/*
ReadConfig loads a YAML run configuration and fills the defaults.
*/
func ReadConfig(path string) (Config, error) {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return Config{}, zorros.Wrapf(err, "failed to read config `%v`: %v", path, err.Error())
	}
	c := Config{}
	if err = yaml.Unmarshal(b, &c); err != nil {
		return Config{}, zorros.Wrapf(err, "failed to parse config `%v`: %v", path, err.Error())
	}
	return c.WithDefaults(), nil
}

/*
WithDefaults fills the zero-valued fields every run needs.
*/
func (c Config) WithDefaults() Config {
	if c.OmicsMode == "" {
		c.OmicsMode = "abc"
	}
	if c.DownstreamTask == "" {
		c.DownstreamTask = string(omics.Classification)
	}
	if c.NetDown == "" {
		c.NetDown = "multi_FC_classifier"
	}
	if c.NormType == "" {
		c.NormType = "batch"
	}
	if c.LeakySlope == 0 {
		c.LeakySlope = 0.2
	}
	if c.LatentDim == 0 {
		c.LatentDim = 256
	}
	if c.TimeNum == 0 {
		c.TimeNum = 256
	}
	if c.InitType == "" {
		c.InitType = "normal"
	}
	if c.InitGain == 0 {
		c.InitGain = 0.02
	}
	return c
}

func (c Config) datasetOptions() omics.Options {
	return omics.Options{
		Dir:           c.DataRoot,
		Mode:          c.OmicsMode,
		UseSampleList: c.UseSampleList,
		AddChannel:    c.AddChannel,
		SplitB:        c.ChSeparate,
		ChromosomeMap: c.ChromosomeMap,
		Dims:          [3]int{c.ADim, c.BDim, c.CDim},
		Targets: omics.TargetOptions{
			Task:         omics.Task(c.DownstreamTask),
			TaskNum:      c.TaskNum,
			SurvivalLoss: c.SurvivalLoss,
			TimeNum:      c.TimeNum,
			SurvivalTMax: c.SurvivalTMax,
			Stratify:     c.StratifyLabel,
		},
	}
}

func (c Config) netOptions(d *omics.Dataset) nn.Options {
	return nn.Options{
		Mode:     c.OmicsMode,
		Down:     c.NetDown,
		NormType: c.NormType,
		Slope:    c.LeakySlope,
		DropP:    c.DropoutP,

		LatentDim: c.LatentDim,
		Dim1:      c.Dim1, Dim2: c.Dim2, Dim3: c.Dim3,
		Dim1M:    [3]int{c.Dim1A, c.Dim1B, c.Dim1C},
		Dim2M:    [3]int{c.Dim2A, c.Dim2B, c.Dim2C},
		HeadDim1: c.HeadDim1, HeadDim2: c.HeadDim2, LayerNum: c.LayerNum,

		ClassNum:  d.Targets.ClassNum,
		ClassNums: d.Targets.ClassNums,
		TimeNum:   c.TimeNum,
		TaskNum:   c.TaskNum,

		InitType: c.InitType,
		InitGain: c.InitGain,
		Seed:     c.Seed,
		Devices:  c.Devices,
	}
}
